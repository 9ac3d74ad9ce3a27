package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		e := now.Add(d)
		return &e
	}

	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"nil end shows nothing", nil, ""},
		{"exactly now is ended", at(0), "Ended"},
		{"past is ended", at(-time.Minute), "Ended"},
		{"one hour one minute one second", at(3661 * time.Second), "1h 1m 1s"},
		{"no zero padding", at(9*time.Second + 5*time.Minute), "0h 5m 9s"},
		{"hours exceed a day without rollover", at(30*time.Hour + 2*time.Second), "30h 0m 2s"},
		{"sub-second remainder floors", at(1500 * time.Millisecond), "0h 0m 1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.end, now))
		})
	}
}
