package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
)

// Latency thresholds for colouring phase timings.
const (
	latencyGood = 100 * time.Millisecond
	latencyWarn = time.Second
)

// FormatNanos renders a nanosecond span compactly: 850µs, 12.3ms, 1.20s.
func FormatNanos(ns int64) string {
	d := time.Duration(ns)
	neg := ""
	if d < 0 {
		neg, d = "-", -d
	}
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%s%dns", neg, d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%s%dµs", neg, d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%s%.1fms", neg, float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%s%.2fs", neg, d.Seconds())
	}
	return neg + d.Truncate(time.Second).String()
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(b float64) string {
	const unit = 1024.0
	if b < unit {
		return fmt.Sprintf("%.0fB", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", b/div, "KMGTP"[exp])
}

func timingCell(v *int64) components.Cell {
	if v == nil {
		return components.Missing()
	}
	d := time.Duration(*v)
	style := components.StyleGood
	switch {
	case d < 0:
		style = components.StyleMuted
	case d >= latencyWarn:
		style = components.StyleBad
	case d >= latencyGood:
		style = components.StyleWarn
	}
	return components.Cell{Text: FormatNanos(*v), Style: style, Align: components.AlignRight}
}

func textCell(s string) components.Cell {
	if s == "" {
		return components.Missing()
	}
	return components.Cell{Text: s}
}

func intCell[N int | int32 | int64](v *N) components.Cell {
	if v == nil {
		return components.Missing()
	}
	return components.Cell{Text: strconv.FormatInt(int64(*v), 10), Align: components.AlignRight}
}

// ShortHash keeps the head of a base58 hash.
func ShortHash(h string) string {
	const keep = 12
	if len(h) <= keep {
		return h
	}
	return h[:keep] + "…"
}

// timeline turns optional absolute times into display values: relative to
// ref, or with delta relative to the previous present phase.
func timeline(ref int64, delta bool, times ...*int64) []*int64 {
	out := make([]*int64, len(times))
	prev := ref
	for i, t := range times {
		if t == nil {
			continue
		}
		v := *t - ref
		if delta {
			v = *t - prev
		}
		out[i] = &v
		prev = *t
	}
	return out
}
