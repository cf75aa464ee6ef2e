// If you are AI: This file validates stream names accepted on the API.

package api

import (
	"errors"
)

// MaxStreamNameLen bounds stream names.
const MaxStreamNameLen = 64

// ErrInvalidStreamName is returned for names outside [a-z][a-z0-9_-]{0,63}.
var ErrInvalidStreamName = errors.New("invalid stream name")

// ValidateStreamName checks that name starts with a lowercase letter and
// contains only lowercase letters, digits, '_' and '-'.
func ValidateStreamName(name string) error {
	if len(name) == 0 || len(name) > MaxStreamNameLen {
		return ErrInvalidStreamName
	}
	if name[0] < 'a' || name[0] > 'z' {
		return ErrInvalidStreamName
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return ErrInvalidStreamName
		}
	}
	return nil
}
