// If you are AI: This file implements the open segment of a stream: a zstd stream into memory.
// A segment is sealed by closing the encoder and reused afterwards via Reset.

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// errSegmentDropped is returned when appending to a segment of a deleted stream.
var errSegmentDropped = errors.New("segment dropped")

// segment buffers the compressed events of one stream until it is sealed.
// Lock expectations: all fields are guarded by the owning stream's mutex in Service.
type segment struct {
	id       string
	buf      bytes.Buffer
	enc      *zstd.Encoder
	rawBytes int64
	events   int
	opened   time.Time
	dropped  bool
}

// newSegment creates an empty open segment.
func newSegment() (*segment, error) {
	seg := &segment{}
	enc, err := zstd.NewWriter(&seg.buf,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	seg.enc = enc
	seg.reset()
	return seg, nil
}

// newSegmentID names a segment by its open time plus a random suffix.
func newSegmentID(opened time.Time) string {
	return fmt.Sprintf("%s.%s.zst", opened.UTC().Format("20060102T150405Z"), uuid.NewString())
}

// append writes one newline-terminated event and flushes the encoder so
// buf.Len() reflects everything written so far.
func (s *segment) append(event []byte) error {
	if s.dropped {
		return errSegmentDropped
	}
	if _, err := s.enc.Write(event); err != nil {
		return fmt.Errorf("compress event: %w", err)
	}
	if _, err := s.enc.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("compress event: %w", err)
	}
	s.rawBytes += int64(len(event))
	s.events++
	return nil
}

// flush emits buffered compressed data; returns the current compressed size.
func (s *segment) flush() (int, error) {
	if err := s.enc.Flush(); err != nil {
		return 0, fmt.Errorf("flush zstd encoder: %w", err)
	}
	return s.buf.Len(), nil
}

// seal closes the zstd frame and returns a copy of the finished segment.
func (s *segment) seal() ([]byte, error) {
	if err := s.enc.Close(); err != nil {
		return nil, fmt.Errorf("close zstd encoder: %w", err)
	}
	data := make([]byte, s.buf.Len())
	copy(data, s.buf.Bytes())
	return data, nil
}

// empty reports whether no event was appended since the last reset.
func (s *segment) empty() bool {
	return s.dropped || s.events == 0
}

// reset starts a new segment on the same encoder. A discarded segment stays discarded.
func (s *segment) reset() {
	if s.dropped {
		return
	}
	s.buf.Reset()
	s.enc.Reset(&s.buf)
	s.rawBytes = 0
	s.events = 0
	s.opened = time.Now()
	s.id = newSegmentID(s.opened)
}

// discard releases encoder resources. The segment accepts no further events.
func (s *segment) discard() {
	if s.dropped {
		return
	}
	s.dropped = true
	s.enc.Close()
	s.buf.Reset()
	s.rawBytes = 0
	s.events = 0
}
