package coverage

import (
	"fmt"
	"strings"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// PeriodWindow is a period's clock interval expressed in minutes since
// midnight, half-open on the right.
type PeriodWindow struct {
	Start int
	End   int
}

// BellSchedule maps period numbers to clock intervals. It is school-specific
// configuration: index 0 holds period 1. Schedules between one and ten
// periods are accepted.
type BellSchedule struct {
	windows []PeriodWindow
}

const maxBellPeriods = 10

// DefaultBellSchedule is the common eight-period day with a mid-morning
// break between the third and fourth period.
func DefaultBellSchedule() *BellSchedule {
	bs, _ := ParseBellSchedule("08:00-08:55,08:55-09:50,09:50-10:45,11:00-11:55,11:55-12:50,12:50-13:45,14:30-15:25,15:25-16:20")
	return bs
}

// ParseBellSchedule reads a comma-separated list of "HH:MM-HH:MM" intervals,
// one per period in period order.
func ParseBellSchedule(s string) (*BellSchedule, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 0 || len(parts) > maxBellPeriods {
		return nil, fmt.Errorf("%w: bell schedule must have between 1 and %d periods", domain.ErrInvalidInput, maxBellPeriods)
	}

	windows := make([]PeriodWindow, 0, len(parts))
	for i, part := range parts {
		fromTo := strings.Split(strings.TrimSpace(part), "-")
		if len(fromTo) != 2 {
			return nil, fmt.Errorf("%w: period %d: expected \"HH:MM-HH:MM\", got %q", domain.ErrInvalidInput, i+1, part)
		}

		start, err := ClockToMinutes(fromTo[0])
		if err != nil {
			return nil, fmt.Errorf("%w: period %d: %v", domain.ErrInvalidInput, i+1, err)
		}
		end, err := ClockToMinutes(fromTo[1])
		if err != nil {
			return nil, fmt.Errorf("%w: period %d: %v", domain.ErrInvalidInput, i+1, err)
		}
		if end <= start {
			return nil, fmt.Errorf("%w: period %d ends before it starts", domain.ErrInvalidInput, i+1)
		}
		if i > 0 && start < windows[i-1].End {
			return nil, fmt.Errorf("%w: period %d overlaps period %d", domain.ErrInvalidInput, i+1, i)
		}

		windows = append(windows, PeriodWindow{Start: start, End: end})
	}

	return &BellSchedule{windows: windows}, nil
}

// LoadBellSchedule parses the configured schedule string, falling back to the
// default when the string is empty.
func LoadBellSchedule(configured string) (*BellSchedule, error) {
	if strings.TrimSpace(configured) == "" {
		return DefaultBellSchedule(), nil
	}
	return ParseBellSchedule(configured)
}

// MaxPeriod is the number of periods in the school day.
func (bs *BellSchedule) MaxPeriod() int32 {
	return int32(len(bs.windows))
}

// Window returns the clock interval for a period, failing on out-of-range
// period numbers.
func (bs *BellSchedule) Window(period int32) (PeriodWindow, error) {
	if period < 1 || period > bs.MaxPeriod() {
		return PeriodWindow{}, fmt.Errorf("%w: period %d out of range 1..%d", domain.ErrInvalidInput, period, bs.MaxPeriod())
	}
	return bs.windows[period-1], nil
}

// ClockToMinutes converts "HH:MM" (a trailing ":SS" is tolerated) to minutes
// since midnight.
func ClockToMinutes(clock string) (int, error) {
	var hh, mm int
	trimmed := strings.TrimSpace(clock)
	if strings.Count(trimmed, ":") == 2 {
		trimmed = trimmed[:strings.LastIndex(trimmed, ":")]
	}
	if _, err := fmt.Sscanf(trimmed, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("clock time %q out of range", clock)
	}
	return hh*60 + mm, nil
}

// MinutesToClock renders minutes since midnight as "HH:MM:SS", the format the
// timetable rows store.
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// Overlaps applies the three-way interval test: a overlaps b when a starts
// inside b, ends inside b, or fully contains b.
func Overlaps(a, b PeriodWindow) bool {
	startsInside := a.Start >= b.Start && a.Start < b.End
	endsInside := a.End > b.Start && a.End <= b.End
	contains := a.Start <= b.Start && a.End >= b.End
	return startsInside || endsInside || contains
}
