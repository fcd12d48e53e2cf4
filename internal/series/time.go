package series

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Time is a point's position on the time axis, in unix seconds.
type Time int64

const businessDayLayout = "2006-01-02"

// FromTime converts a wall-clock time.
func FromTime(t time.Time) Time { return Time(t.Unix()) }

// Std converts back to a UTC time.Time.
func (t Time) Std() time.Time { return time.Unix(int64(t), 0).UTC() }

// MarshalJSON writes the unix timestamp as a number.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(t), 10)), nil
}

// UnmarshalJSON accepts unix seconds, "YYYY-MM-DD" business days and RFC3339
// strings.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		return fmt.Errorf("time: missing value")
	}
	if s[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("time: %w", err)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("time: %w", err)
		}
		*t = Time(int64(f))
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	parsed, err := ParseTime(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTime parses the string forms accepted in data files.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Time(n), nil
	}
	if d, err := time.Parse(businessDayLayout, s); err == nil {
		return FromTime(d), nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(d), nil
	}
	return 0, fmt.Errorf("time: unrecognized value %q", s)
}

// LogicalRange is the window of logical bar indices a pane shows.
type LogicalRange struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Contains reports whether logical index i lies inside the window.
func (r LogicalRange) Contains(i float64) bool {
	return i >= r.From && i <= r.To
}

// Check rejects windows with a NaN or infinite bound and windows that end
// before they start.
func (r LogicalRange) Check() error {
	if !finite(r.From) || !finite(r.To) {
		return fmt.Errorf("range bounds must be finite (from=%g to=%g)", r.From, r.To)
	}
	if r.To < r.From {
		return fmt.Errorf("range ends before it starts (from=%g to=%g)", r.From, r.To)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Span is the width of the window in bars.
func (r LogicalRange) Span() float64 { return r.To - r.From }
