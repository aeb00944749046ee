package stats

import (
	"fmt"
	"time"
)

// Window is the time range a statistic covers, ending now.
type Window string

const (
	TwoDays     Window = "two_days"
	Week        Window = "week"
	Month       Window = "month"
	ThreeMonths Window = "three_months"
	Year        Window = "year"
)

// Windows lists every window in ascending length.
var Windows = []Window{TwoDays, Week, Month, ThreeMonths, Year}

func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case TwoDays, Week, Month, ThreeMonths, Year:
		return w, nil
	default:
		return "", fmt.Errorf("invalid time window %q", s)
	}
}

func (w Window) Duration() time.Duration {
	const day = 24 * time.Hour
	switch w {
	case TwoDays:
		return 2 * day
	case Week:
		return 7 * day
	case Month:
		return 30 * day
	case ThreeMonths:
		return 90 * day
	case Year:
		return 365 * day
	default:
		return 0
	}
}

// windowStore holds one value per window.
type windowStore[T any] struct {
	twoDays     T
	week        T
	month       T
	threeMonths T
	year        T
}

func newWindowStore[T any](build func(Window) T) windowStore[T] {
	return windowStore[T]{
		twoDays:     build(TwoDays),
		week:        build(Week),
		month:       build(Month),
		threeMonths: build(ThreeMonths),
		year:        build(Year),
	}
}

func (s *windowStore[T]) get(w Window) (T, bool) {
	switch w {
	case TwoDays:
		return s.twoDays, true
	case Week:
		return s.week, true
	case Month:
		return s.month, true
	case ThreeMonths:
		return s.threeMonths, true
	case Year:
		return s.year, true
	default:
		var zero T
		return zero, false
	}
}
