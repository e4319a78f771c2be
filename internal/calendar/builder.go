package calendar

import (
	"fmt"
	"time"
)

// Build constructs the session index for a calendar configuration over
// the inclusive date range [start, end]. Construction is pure and
// stateless: the same configuration and range always produce the same
// index, so independent builds are safe to run concurrently.
func Build(cfg Config, start, end time.Time) (*SessionIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start, end = Midnight(start), Midnight(end)
	if start.After(end) {
		return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("range start %s is after end %s", FormatDate(start), FormatDate(end))}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("unknown timezone %q", cfg.Timezone)}
	}

	ctx := cfg.Context()
	holidays := UnionHolidays(cfg.Holidays, start, end, ctx)
	holidaySet := make(map[time.Time]struct{}, len(holidays))
	for _, d := range holidays {
		holidaySet[d] = struct{}{}
	}

	var sessions []Session
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !ctx.Weekly.IsTradingDay(d) {
			continue
		}
		if _, holiday := holidaySet[d]; holiday {
			continue
		}

		span, ok := cfg.hoursFor(d)
		if !ok {
			return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("no hours span covers session date %s", FormatDate(d))}
		}

		open := span.Open
		close := span.Close
		special := false
		if sp, ok := cfg.Specials[FormatDate(d)]; ok {
			if sp.Open != nil {
				open = *sp.Open
			}
			if sp.Close != nil {
				close = *sp.Close
			}
			special = true
		}

		openDate := d.AddDate(0, 0, cfg.OpenOffsetDays)
		sessions = append(sessions, Session{
			Date:    d,
			Open:    time.Date(openDate.Year(), openDate.Month(), openDate.Day(), open.Hour, open.Minute, 0, 0, loc),
			Close:   time.Date(d.Year(), d.Month(), d.Day(), close.Hour, close.Minute, 0, 0, loc),
			Special: special,
		})
	}

	// An override naming a holiday or weekly non-trading date within the
	// built range points at a session that does not exist.
	for key := range cfg.Specials {
		d, err := ParseDate(key)
		if err != nil {
			return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("special hours key %q is not a date", key)}
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		if _, holiday := holidaySet[d]; holiday {
			return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("special hours for %s reference a holiday", key)}
		}
		if !ctx.Weekly.IsTradingDay(d) {
			return nil, &ConstructionError{Calendar: cfg.Name, Reason: fmt.Sprintf("special hours for %s reference a non-trading weekday", key)}
		}
	}

	return NewSessionIndex(cfg.Name, loc, start, end, sessions, cfg.ExecutionOpenOffset, cfg.ExecutionCloseOffset)
}
