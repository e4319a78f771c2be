package calendarcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

const sampleCalendar = `
name: XTSE
timezone: America/Toronto
hours:
  - open: "09:30"
    close: "16:00"
aliases:
  - TSX
holidays:
  - name: New Year's Day
    month: 1
    day: 1
    observance:
      - stage: nearest_workday
  - name: Family Day
    month: 2
    weekday: monday
    nth: 3
    from_year: 2008
  - name: Good Friday
    easter_offset: -2
  - name: One-off closure
    dates:
      - "2022-09-19"
special_hours:
  "2024-12-24":
    close: "13:00"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "xtse.yaml", sampleCalendar)

	def, err := LoadFile(path)
	require.NoError(t, err)

	cfg := def.Config
	assert.Equal(t, "XTSE", cfg.Name)
	assert.Equal(t, "America/Toronto", cfg.Timezone)
	assert.Equal(t, []string{"TSX"}, def.Aliases)
	require.Len(t, cfg.Hours, 1)
	assert.Equal(t, calendar.TimeOfDay{Hour: 9, Minute: 30}, cfg.Hours[0].Open)
	assert.Equal(t, calendar.TimeOfDay{Hour: 16}, cfg.Hours[0].Close)
	require.Len(t, cfg.Holidays, 4)

	// The loaded configuration builds.
	ix, err := calendar.Build(cfg, calendar.Day(2024, time.January, 1), calendar.Day(2024, time.December, 31))
	require.NoError(t, err)
	assert.False(t, ix.IsSession(calendar.Day(2024, time.January, 1)))
	assert.False(t, ix.IsSession(calendar.Day(2024, time.February, 19)), "third Monday of February")
	assert.False(t, ix.IsSession(calendar.Day(2024, time.March, 29)), "Good Friday")

	s, err := ix.SessionFor(calendar.Day(2024, time.December, 24))
	require.NoError(t, err)
	assert.True(t, s.Special)
	assert.Equal(t, 13, s.Close.In(ix.Timezone()).Hour())
}

func TestLoadFile_AdHocDates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", sampleCalendar)
	def, err := LoadFile(path)
	require.NoError(t, err)

	ix, err := calendar.Build(def.Config, calendar.Day(2022, time.September, 1), calendar.Day(2022, time.September, 30))
	require.NoError(t, err)
	assert.False(t, ix.IsSession(calendar.Day(2022, time.September, 19)))
}

func TestLoadFile_WeeklyPatternAndOffset(t *testing.T) {
	content := `
name: GULF
timezone: Asia/Dubai
weekly_non_trading: [friday, saturday]
session_day_offset: 0
hours:
  - open: "10:00"
    close: "15:00"
`
	path := writeFile(t, t.TempDir(), "gulf.yaml", content)
	def, err := LoadFile(path)
	require.NoError(t, err)

	ix, err := calendar.Build(def.Config, calendar.Day(2024, time.June, 1), calendar.Day(2024, time.June, 9))
	require.NoError(t, err)
	assert.False(t, ix.IsSession(calendar.Day(2024, time.June, 7)), "Friday")
	assert.False(t, ix.IsSession(calendar.Day(2024, time.June, 8)), "Saturday")
	assert.True(t, ix.IsSession(calendar.Day(2024, time.June, 9)), "Sunday trades")
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		fragment string
	}{
		{
			name:     "missing name",
			content:  "timezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n",
			fragment: "name is required",
		},
		{
			name:     "missing timezone",
			content:  "name: X\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n",
			fragment: "timezone is required",
		},
		{
			name:     "bad time of day",
			content:  "name: X\ntimezone: UTC\nhours:\n  - open: \"9am\"\n    close: \"17:00\"\n",
			fragment: "bad time of day",
		},
		{
			name: "holiday without anchor",
			content: "name: X\ntimezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n" +
				"holidays:\n  - name: Mystery\n",
			fragment: "no anchor",
		},
		{
			name: "anchor mixed with dates",
			content: "name: X\ntimezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n" +
				"holidays:\n  - name: Mixed\n    month: 1\n    day: 1\n    dates: [\"2024-01-01\"]\n",
			fragment: "cannot be combined",
		},
		{
			name: "unknown stage",
			content: "name: X\ntimezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n" +
				"holidays:\n  - name: H\n    month: 1\n    day: 1\n    observance:\n      - stage: wobble\n",
			fragment: "unknown observance stage",
		},
		{
			name: "unknown weekday",
			content: "name: X\ntimezone: UTC\nweekly_non_trading: [caturday]\nhours:\n" +
				"  - open: \"09:00\"\n    close: \"17:00\"\n",
			fragment: "unknown weekday",
		},
		{
			name:     "unknown timezone",
			content:  "name: X\ntimezone: Mars/Olympus\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n",
			fragment: "timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.fragment)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "name: BBB\ntimezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n")
	writeFile(t, dir, "a.yml", "name: AAA\ntimezone: UTC\nhours:\n  - open: \"09:00\"\n    close: \"17:00\"\n")
	writeFile(t, dir, "ignored.txt", "not a calendar")

	defs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "AAA", defs[0].Config.Name, "sorted by filename")
	assert.Equal(t, "BBB", defs[1].Config.Name)
}

func TestLoadDir_Missing(t *testing.T) {
	defs, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoadDir_PropagatesFileError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "name: [\n")
	_, err := LoadDir(dir)
	assert.Error(t, err)
}
