// Package calendarcfg loads declarative calendar definitions from YAML
// files, so calendars beyond the built-in set can be supplied as plain
// configuration.
package calendarcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// Definition is one loaded calendar plus the aliases that point at it.
type Definition struct {
	Config  calendar.Config
	Aliases []string
}

type fileSchema struct {
	Name             string                   `yaml:"name"`
	Timezone         string                   `yaml:"timezone"`
	WeeklyNonTrading []string                 `yaml:"weekly_non_trading"`
	Hours            []hoursSchema            `yaml:"hours"`
	SessionDayOffset int                      `yaml:"session_day_offset"`
	Holidays         []holidaySchema          `yaml:"holidays"`
	SpecialHours     map[string]specialSchema `yaml:"special_hours"`
	Aliases          []string                 `yaml:"aliases"`
}

type hoursSchema struct {
	From  string `yaml:"from"`
	Until string `yaml:"until"`
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type holidaySchema struct {
	Name string `yaml:"name"`

	// Recurring anchors; exactly one of the groups below may be set.
	Month        int    `yaml:"month"`
	Day          int    `yaml:"day"`
	Weekday      string `yaml:"weekday"`
	Nth          int    `yaml:"nth"`
	EasterOffset *int   `yaml:"easter_offset"`
	Julian       bool   `yaml:"julian"`

	FromYear   int           `yaml:"from_year"`
	UntilYear  int           `yaml:"until_year"`
	Observance []stageSchema `yaml:"observance"`

	// Ad-hoc dates; mutually exclusive with the anchor fields.
	Dates []string `yaml:"dates"`
}

type stageSchema struct {
	Stage     string `yaml:"stage"`
	FromYear  int    `yaml:"from_year"`
	UntilYear int    `yaml:"until_year"`
	Days      int    `yaml:"days"`
}

type specialSchema struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// LoadFile parses and validates a single calendar definition.
func LoadFile(path string) (Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}

	var raw fileSchema
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Definition{}, fmt.Errorf("parse %s: %w", path, err)
	}

	def, err := normalize(raw)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// LoadDir loads every .yaml/.yml file in dir, sorted by filename so
// registration order is deterministic. A missing directory is not an
// error; it simply yields no definitions.
func LoadDir(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	defs := make([]Definition, 0, len(paths))
	for _, p := range paths {
		def, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func normalize(raw fileSchema) (Definition, error) {
	if raw.Name == "" {
		return Definition{}, fmt.Errorf("name is required")
	}
	if raw.Timezone == "" {
		return Definition{}, fmt.Errorf("timezone is required")
	}

	cfg := calendar.NewConfig(raw.Name, raw.Timezone)
	cfg.OpenOffsetDays = raw.SessionDayOffset

	if raw.WeeklyNonTrading != nil {
		var days []time.Weekday
		for _, name := range raw.WeeklyNonTrading {
			wd, err := parseWeekday(name)
			if err != nil {
				return Definition{}, err
			}
			days = append(days, wd)
		}
		cfg.SetWeekly(calendar.NewWeeklyPattern(days...))
	}

	for i, h := range raw.Hours {
		span := calendar.HoursSpan{}
		var err error
		if span.Open, err = parseTimeOfDay(h.Open); err != nil {
			return Definition{}, fmt.Errorf("hours[%d]: %w", i, err)
		}
		if span.Close, err = parseTimeOfDay(h.Close); err != nil {
			return Definition{}, fmt.Errorf("hours[%d]: %w", i, err)
		}
		if h.From != "" {
			if span.From, err = calendar.ParseDate(h.From); err != nil {
				return Definition{}, fmt.Errorf("hours[%d]: bad from date %q", i, h.From)
			}
		}
		if h.Until != "" {
			if span.Until, err = calendar.ParseDate(h.Until); err != nil {
				return Definition{}, fmt.Errorf("hours[%d]: bad until date %q", i, h.Until)
			}
		}
		cfg.Hours = append(cfg.Hours, span)
	}

	for i, h := range raw.Holidays {
		rule, err := holidayRule(h)
		if err != nil {
			return Definition{}, fmt.Errorf("holidays[%d] (%s): %w", i, h.Name, err)
		}
		cfg.Holidays = append(cfg.Holidays, rule)
	}

	if len(raw.SpecialHours) > 0 {
		cfg.Specials = make(map[string]calendar.SpecialHours, len(raw.SpecialHours))
		for key, sp := range raw.SpecialHours {
			var special calendar.SpecialHours
			if sp.Open != "" {
				tod, err := parseTimeOfDay(sp.Open)
				if err != nil {
					return Definition{}, fmt.Errorf("special_hours[%s]: %w", key, err)
				}
				special.Open = &tod
			}
			if sp.Close != "" {
				tod, err := parseTimeOfDay(sp.Close)
				if err != nil {
					return Definition{}, fmt.Errorf("special_hours[%s]: %w", key, err)
				}
				special.Close = &tod
			}
			cfg.Specials[key] = special
		}
	}

	if err := cfg.Validate(); err != nil {
		return Definition{}, err
	}
	return Definition{Config: cfg, Aliases: raw.Aliases}, nil
}

func holidayRule(h holidaySchema) (calendar.HolidayRule, error) {
	if h.Name == "" {
		return nil, fmt.Errorf("holiday name is required")
	}

	if len(h.Dates) > 0 {
		if h.Month != 0 || h.Weekday != "" || h.EasterOffset != nil {
			return nil, fmt.Errorf("ad-hoc dates cannot be combined with a recurring anchor")
		}
		dates := make([]time.Time, 0, len(h.Dates))
		for _, s := range h.Dates {
			d, err := calendar.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("bad date %q", s)
			}
			dates = append(dates, d)
		}
		return calendar.AdHocHolidays{Name: h.Name, Dates: dates}, nil
	}

	anchor, err := anchorFor(h)
	if err != nil {
		return nil, err
	}

	pipeline := make(calendar.Pipeline, 0, len(h.Observance))
	for _, s := range h.Observance {
		pipeline = append(pipeline, calendar.Stage{
			Kind:      calendar.StageKind(s.Stage),
			FromYear:  s.FromYear,
			UntilYear: s.UntilYear,
			Days:      s.Days,
		})
	}
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	return calendar.RecurringHoliday{
		Name:       h.Name,
		Anchor:     anchor,
		StartYear:  h.FromYear,
		EndYear:    h.UntilYear,
		Observance: pipeline,
	}, nil
}

func anchorFor(h holidaySchema) (calendar.Anchor, error) {
	switch {
	case h.EasterOffset != nil:
		return calendar.EasterOffset{Days: *h.EasterOffset, Julian: h.Julian}, nil
	case h.Weekday != "":
		wd, err := parseWeekday(h.Weekday)
		if err != nil {
			return nil, err
		}
		if h.Month < 1 || h.Month > 12 {
			return nil, fmt.Errorf("weekday anchor needs a month")
		}
		if h.Nth == 0 {
			return nil, fmt.Errorf("weekday anchor needs nth (use -1 for last)")
		}
		return calendar.NthWeekday{Month: time.Month(h.Month), Weekday: wd, N: h.Nth}, nil
	case h.Month >= 1 && h.Month <= 12 && h.Day >= 1:
		return calendar.FixedDate{Month: time.Month(h.Month), Day: h.Day}, nil
	default:
		return nil, fmt.Errorf("no anchor: set month/day, month/weekday/nth, easter_offset, or dates")
	}
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func parseTimeOfDay(s string) (calendar.TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return calendar.TimeOfDay{}, fmt.Errorf("bad time of day %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return calendar.TimeOfDay{}, fmt.Errorf("bad time of day %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return calendar.TimeOfDay{}, fmt.Errorf("bad time of day %q", s)
	}
	tod := calendar.TimeOfDay{Hour: hour, Minute: minute}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return tod, fmt.Errorf("time of day %q out of range", s)
	}
	return tod, nil
}
