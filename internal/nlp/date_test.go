package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDateAt(t *testing.T) {
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		text  string
		now   time.Time
		want  time.Time
		found bool
	}{
		{"today", "lunch today", now, day(2024, time.June, 12), true},
		{"yesterday", "dinner yesterday", now, day(2024, time.June, 11), true},
		{"capitalized", "Yesterday's taxi", now, day(2024, time.June, 11), true},
		{"month rollover", "yesterday", time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), day(2024, time.February, 29), true},
		{"year rollover", "yesterday", time.Date(2024, time.January, 1, 0, 5, 0, 0, time.UTC), day(2023, time.December, 31), true},
		{"us date", "paid on 01/15/2024", now, day(2024, time.January, 15), true},
		{"single digit parts", "on 1/5/2024", now, day(2024, time.January, 5), true},
		{"iso date", "2024-02-10 taxi", now, day(2024, time.February, 10), true},
		{"absolute beats relative", "yesterday, i.e. 01/15/2024", now, day(2024, time.January, 15), true},
		{"earliest absolute", "05/04/2024 or 2024-01-02", now, day(2024, time.May, 4), true},
		{"invalid month skipped", "13/01/2024 yesterday", now, day(2024, time.June, 11), true},
		{"invalid day skipped", "02/30/2024 today", now, day(2024, time.June, 12), true},
		{"first keyword wins", "today, not yesterday", now, day(2024, time.June, 12), true},
		{"whole word only", "todays special", now, time.Time{}, false},
		{"no cue", "dinner with Bob", now, time.Time{}, false},
		{"digits glued", "ref 101/15/20245", now, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDateAt(tt.text, tt.now)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			}
		})
	}
}

func TestExtractDateKeepsClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2024, time.January, 1, 1, 0, 0, 0, loc)

	got, ok := ExtractDateAt("yesterday", now)
	require.True(t, ok)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 31, got.Day())
}

func TestExtractDateUsesWallClock(t *testing.T) {
	got, ok := ExtractDate("coffee today")
	require.True(t, ok)
	now := time.Now()
	assert.Equal(t, now.Year(), got.Year())
	assert.Equal(t, now.Month(), got.Month())
	assert.Equal(t, now.Day(), got.Day())

	got, ok = ExtractDate("01/15/2024")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
}

func TestExtractDateFor(t *testing.T) {
	now := time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		locale string
		text   string
		want   time.Time
	}{
		{"de-DE", "Essen am 15.01.2024", day(2024, time.January, 15)},
		{"pl-PL", "obiad 05.02.2024", day(2024, time.February, 5)},
		{"fr-FR", "dîner le 03/04/2024", day(2024, time.April, 3)},
		{"zh-CN", "午饭 2024年1月5日", day(2024, time.January, 5)},
		{"nl-NL", "etentje 07-08-2024", day(2024, time.August, 7)},
		{"en-US", "lunch 03/04/2024", day(2024, time.March, 4)},
		{"de-DE", "gestern yesterday", day(2024, time.June, 11)},
		{"de-DE", "iso 2024-02-10", day(2024, time.February, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.text, func(t *testing.T) {
			got, ok := ExtractDateFor(tt.text, tt.locale, now)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := day(2024, time.January, 15)
	assert.Equal(t, "01/15/2024", FormatDate(d, "en-US"))
	assert.Equal(t, "15.01.2024", FormatDate(d, "de-DE"))
	assert.Equal(t, "15-01-2024", FormatDate(d, "nl-NL"))
	assert.Equal(t, "2024年01月15日", FormatDate(d, "zh-CN"))
	assert.Equal(t, "01/15/2024", FormatDate(d, "unknown"))
}

func TestParseLocaleDate(t *testing.T) {
	got, ok := ParseLocaleDate("15.01.2024", "de-DE", time.UTC)
	require.True(t, ok)
	assert.True(t, day(2024, time.January, 15).Equal(got))

	got, ok = ParseLocaleDate(" 2024-01-15 ", "de-DE", nil)
	require.True(t, ok)
	assert.True(t, day(2024, time.January, 15).Equal(got))

	_, ok = ParseLocaleDate("31.02.2024", "de-DE", time.UTC)
	assert.False(t, ok)

	_, ok = ParseLocaleDate("15.01.2024 extra", "de-DE", time.UTC)
	assert.False(t, ok)
}
