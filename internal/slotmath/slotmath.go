package slotmath

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the wall-clock day length used for overnight normalization.
const MinutesPerDay = 24 * 60

// Block is a half-open [Start, End) range in minutes from midnight.
// End may exceed MinutesPerDay for windows that cross midnight.
type Block struct {
	Start int
	End   int
}

// ParseClock converts "HH:MM", "H:MM" and 12-hour "H:MM am/pm" strings into
// minutes from midnight. Midnight spellings ("00:00", "24:00", "12:00 am")
// all normalize to 0.
func ParseClock(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = string(suffix[0])
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hh, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	mm, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("minute out of range in %q", raw)
	}

	switch meridiem {
	case "a":
		if hh < 1 || hh > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hh == 12 {
			hh = 0
		}
	case "p":
		if hh < 1 || hh > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hh != 12 {
			hh += 12
		}
	default:
		if hh < 0 || hh > 24 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hh == 24 {
			if mm != 0 {
				return 0, fmt.Errorf("invalid time %q", raw)
			}
			hh = 0
		}
	}

	return hh*60 + mm, nil
}

// FormatClock renders minutes from midnight as "HH:MM" wall-clock time.
// Values past midnight wrap (1500 -> "01:00").
func FormatClock(min int) string {
	min %= MinutesPerDay
	if min < 0 {
		min += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// NormalizeWindow interprets close <= open as an overnight window running
// until close on the next day. A zero-length window becomes a full 24h span
// rather than an accidental empty day.
func NormalizeWindow(open, close int) (int, int) {
	if close <= open {
		close += MinutesPerDay
	}
	return open, close
}

// SlotStarts generates candidate slot start minutes on a step-aligned grid:
// the first start is open rounded up to the grid, then every step while the
// start stays strictly before close.
func SlotStarts(open, close, step int) []int {
	if step <= 0 || close <= open {
		return nil
	}
	first := ((open + step - 1) / step) * step
	out := []int{}
	for t := first; t < close; t += step {
		out = append(out, t)
	}
	return out
}

// Overlaps reports whether two half-open minute intervals intersect.
// Touching edges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Intersect clamps a block to a window, returning ok=false when nothing
// remains.
func Intersect(b Block, open, close int) (Block, bool) {
	s := b.Start
	e := b.End
	if s < open {
		s = open
	}
	if e > close {
		e = close
	}
	if e <= s {
		return Block{}, false
	}
	return Block{Start: s, End: e}, true
}
