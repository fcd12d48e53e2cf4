package series

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Point is one slot on a pane's time axis. The concrete type is always one of
// Scalar, OHLC or Whitespace.
type Point interface {
	PointTime() Time
	isPoint()
}

// Scalar is a single-value point (area, line, step line, histogram, baseline).
type Scalar struct {
	Time  Time    `json:"time"`
	Value float64 `json:"value"`
}

// OHLC is a bar or candlestick point.
type OHLC struct {
	Time  Time    `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Whitespace reserves a time slot without plotting anything, so series of
// unequal length can share one time axis.
type Whitespace struct {
	Time Time `json:"time"`
}

func (p Scalar) PointTime() Time     { return p.Time }
func (p OHLC) PointTime() Time       { return p.Time }
func (p Whitespace) PointTime() Time { return p.Time }

func (Scalar) isPoint()     {}
func (OHLC) isPoint()       {}
func (Whitespace) isPoint() {}

// Price returns the value a point is anchored at on the price axis: Value for
// scalar points, Close for OHLC points. Whitespace has no price.
func Price(p Point) (float64, bool) {
	switch v := p.(type) {
	case Scalar:
		return v.Value, true
	case OHLC:
		return v.Close, true
	case Whitespace:
		return 0, false
	default:
		return 0, false
	}
}

// Bounds returns the lowest and highest price a point covers.
func Bounds(p Point) (lo, hi float64, ok bool) {
	switch v := p.(type) {
	case Scalar:
		return v.Value, v.Value, true
	case OHLC:
		return v.Low, v.High, true
	case Whitespace:
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

// IndexOf finds the logical index of t in points. points must be sorted by
// strictly increasing time; this is not re-checked.
func IndexOf(points []Point, t Time) (int, bool) {
	i := sort.Search(len(points), func(i int) bool { return points[i].PointTime() >= t })
	if i < len(points) && points[i].PointTime() == t {
		return i, true
	}
	return i, false
}

// Validate reports the first position where time does not strictly increase.
func Validate(points []Point) error {
	for i := 1; i < len(points); i++ {
		if points[i].PointTime() <= points[i-1].PointTime() {
			return fmt.Errorf("point %d: time %d not after %d", i, points[i].PointTime(), points[i-1].PointTime())
		}
	}
	return nil
}

// AlignTo maps every time of reference to the sparse point with the same time,
// or to a Whitespace point when sparse has no value there.
func AlignTo(reference, sparse []Point) []Point {
	byTime := make(map[Time]Point, len(sparse))
	for _, p := range sparse {
		byTime[p.PointTime()] = p
	}
	out := make([]Point, 0, len(reference))
	for _, r := range reference {
		if p, ok := byTime[r.PointTime()]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, Whitespace{Time: r.PointTime()})
	}
	return out
}

type rawPoint struct {
	Time  Time     `json:"time"`
	Value *float64 `json:"value,omitempty"`
	Open  *float64 `json:"open,omitempty"`
	High  *float64 `json:"high,omitempty"`
	Low   *float64 `json:"low,omitempty"`
	Close *float64 `json:"close,omitempty"`
}

func (r rawPoint) point() (Point, error) {
	ohlcFields := 0
	for _, f := range []*float64{r.Open, r.High, r.Low, r.Close} {
		if f != nil {
			ohlcFields++
		}
	}
	switch {
	case ohlcFields == 4:
		return OHLC{Time: r.Time, Open: *r.Open, High: *r.High, Low: *r.Low, Close: *r.Close}, nil
	case ohlcFields > 0:
		return nil, fmt.Errorf("time %d: incomplete ohlc point", r.Time)
	case r.Value != nil:
		return Scalar{Time: r.Time, Value: *r.Value}, nil
	default:
		return Whitespace{Time: r.Time}, nil
	}
}

// DecodePoints parses a JSON array of points. The shape of each element picks
// its variant: open/high/low/close make an OHLC point, value makes a Scalar,
// a bare time makes Whitespace.
func DecodePoints(data []byte) ([]Point, error) {
	var raws []rawPoint
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	points := make([]Point, 0, len(raws))
	for _, r := range raws {
		p, err := r.point()
		if err != nil {
			return nil, fmt.Errorf("decode points: %w", err)
		}
		points = append(points, p)
	}
	return points, nil
}

// EncodePoints renders points in the same JSON shape DecodePoints accepts.
func EncodePoints(points []Point) ([]byte, error) {
	out := make([]any, 0, len(points))
	for _, p := range points {
		switch v := p.(type) {
		case Scalar:
			out = append(out, v)
		case OHLC:
			out = append(out, v)
		case Whitespace:
			out = append(out, v)
		default:
			return nil, fmt.Errorf("encode points: unsupported point %T", p)
		}
	}
	return json.Marshal(out)
}
