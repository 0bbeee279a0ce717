// Package timefmt renders playback offsets as HH:MM:SS labels and parses them back.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1000
)

// ErrInvalidLabel is returned by Parse for text that is not HH:MM:SS.
var ErrInvalidLabel = errors.New("invalid time label")

// Format renders d as zero-padded hours:minutes:seconds.
// Hours keep growing past two digits; negative values render as zero.
func Format(d time.Duration) string {
	ms := max(d.Milliseconds(), 0)
	hours := ms / msPerHour
	minutes := (ms / msPerMinute) % 60
	seconds := (ms / msPerSecond) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatRemaining renders the time left until duration, prefixed with "-".
func FormatRemaining(position, duration time.Duration) string {
	return "-" + Format(max(duration-position, 0))
}

// Parse reads a label produced by Format or FormatRemaining.
// The leading "-" of a remaining-time label is accepted and ignored.
func Parse(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "-"), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}

	fields := make([]int64, 3)
	for i, p := range parts {
		if len(p) < 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
		}
		fields[i] = n
	}

	ms := fields[0]*msPerHour + fields[1]*msPerMinute + fields[2]*msPerSecond
	return time.Duration(ms) * time.Millisecond, nil
}
