// If you are AI: This file provides helper functions for building, starting and stopping logbook processes in tests.

package itest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// Process is a running logbook subprocess.
type Process struct {
	Cmd        *exec.Cmd
	HTTPPort   int
	HealthPort int
}

// BuildBinary compiles cmd/logbook into a temp dir and returns its path.
func BuildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "logbook")
	buildCmd := exec.Command("go", "build", "-o", binPath, "../../cmd/logbook")
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	return binPath
}

// StartServer starts logbook on free ports with fs storage under dataDir.
// It returns once /readyz reports the bootstrap load finished.
func StartServer(ctx context.Context, t *testing.T, binPath, dataDir string) *Process {
	t.Helper()
	httpPort := findFreePort(t)
	healthPort := findFreePort(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := fmt.Sprintf(`server:
  health_port: %d
  http_port: %d
storage:
  backend: fs
  dir: %s
ingest:
  flush_interval: 1h
log:
  level: debug
`, healthPort, httpPort, dataDir)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cmd := exec.CommandContext(ctx, binPath, "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	p := &Process{Cmd: cmd, HTTPPort: httpPort, HealthPort: healthPort}
	if err := WaitForReady(healthPort, 5*time.Second); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		t.Fatalf("Server not ready: %v", err)
	}
	return p
}

// Stop sends SIGINT and waits for a clean exit.
func (p *Process) Stop(t *testing.T) {
	t.Helper()
	if err := p.Cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send SIGINT: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Server exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		p.Cmd.Process.Kill()
		t.Fatal("Server did not exit within 5 seconds after SIGINT")
	}
}

// URL returns an API URL on the process.
func (p *Process) URL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", p.HTTPPort, path)
}

// Do sends a request and returns status and body.
func Do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

// WaitForReady waits for the readiness endpoint to return 200.
// Returns an error if the endpoint is not ready within the timeout.
func WaitForReady(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/readyz", port)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("readiness endpoint not available after %v", timeout)
}

// findFreePort asks the kernel for an unused TCP port.
func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}
