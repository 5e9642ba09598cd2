package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh record identifier. Identifiers are UUIDv7 strings: a
// 48-bit millisecond timestamp followed by random bits, so they sort by
// creation time and collide only with negligible probability.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Time returns the creation time carried by an identifier produced by New.
func Time(s string) (time.Time, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("id %q is version %d, not time-ordered", s, u.Version())
	}
	var ms int64
	for _, b := range u[:6] {
		ms = ms<<8 | int64(b)
	}
	return time.UnixMilli(ms).UTC(), nil
}
