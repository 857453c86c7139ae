package timetable

import (
	"testing"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

var frozenToday = time.Date(2024, time.January, 1, 9, 30, 0, 0, timezone.Location)

func TestFormatFullDay(t *testing.T) {
	day := ejournal.Day{
		Date: timezone.DayWithOffset(frozenToday, 0),
		Lessons: []ejournal.Lesson{
			{Time: "08:00 - 08:45", Subject: "Math", Teacher: "Ivanova", Room: "204"},
			{Subject: "PE"},
		},
	}

	text := Format(day, 0, frozenToday)
	require.Contains(t, text, "today (01.01.2024)")
	require.Contains(t, text, "<b>1.</b> ⏰ 08:00 - 08:45 - 📚 Math 🏫 Room: 204 👨‍🏫 Ivanova")
	// absent fields are omitted entirely, no placeholder punctuation
	require.Contains(t, text, "<b>2.</b> 📚 PE")
	require.NotContains(t, text, "Room: \n")
}

func TestFormatHeaderVariants(t *testing.T) {
	day := ejournal.Day{Lessons: []ejournal.Lesson{{Subject: "Art"}}}

	require.Contains(t, Format(day, 0, frozenToday), "today (01.01.2024)")
	require.Contains(t, Format(day, 1, frozenToday), "tomorrow (02.01.2024)")
	require.Contains(t, Format(day, 5, frozenToday), "in 5 days (06.01.2024)")
}

func TestFormatEmptyDay(t *testing.T) {
	empty := ejournal.Day{Date: timezone.DayWithOffset(frozenToday, 1)}

	text := Format(empty, 1, frozenToday)
	require.Equal(t, "📅 Schedule for tomorrow (02.01.2024) is empty", text)
	require.NotContains(t, text, "<b>")
}

func TestFormatIsIdempotent(t *testing.T) {
	day := ejournal.Day{
		Date: timezone.DayWithOffset(frozenToday, 0),
		Lessons: []ejournal.Lesson{
			{Time: "10:00 - 10:45", Subject: "Art", Room: "12"},
		},
	}

	first := Format(day, 0, frozenToday)
	second := Format(day, 0, frozenToday)
	require.Equal(t, first, second)
}

func TestFormatSeparatesLessonsWithBlankLine(t *testing.T) {
	day := ejournal.Day{
		Lessons: []ejournal.Lesson{
			{Subject: "One"},
			{Subject: "Two"},
		},
	}

	text := Format(day, 0, frozenToday)
	require.Contains(t, text, "📚 One\n\n<b>2.</b> 📚 Two")
}
