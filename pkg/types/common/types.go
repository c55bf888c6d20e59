// Package common defines shared identifier and envelope types used by the
// API layer, the persistence layer, and the client SDK.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// GenerateID returns a fresh UUID v4 ID with an optional prefix.
func GenerateID(prefix string) ID {
	id := uuid.NewString()
	if prefix == "" {
		return ID(id)
	}
	return ID(prefix + "_" + id)
}

// Timestamp is a time.Time alias serialized as RFC 3339 in API payloads.
type Timestamp time.Time

// UTC returns the timestamp as a time.Time in UTC.
func (t Timestamp) UTC() time.Time {
	return time.Time(t).UTC()
}

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now())
}

// MarshalJSON serializes the timestamp as an RFC 3339 string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON parses an RFC 3339 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the generic wrapper for all API responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp Timestamp    `json:"timestamp"`
}
