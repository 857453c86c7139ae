package timetable

import (
	"fmt"
	"strings"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/timezone"
)

// header labels carry the date the user asked about, which is always
// today + offset. when the proximity fallback substituted a different
// day the actual date lives in day.Date, but the header stays on the
// requested date to match the portal's own behavior.
func headerLabel(offset int, today time.Time) string {
	date := timezone.DayWithOffset(today, offset).Format("02.01.2006")
	switch offset {
	case 0:
		return fmt.Sprintf("today (%s)", date)
	case 1:
		return fmt.Sprintf("tomorrow (%s)", date)
	default:
		return fmt.Sprintf("in %d days (%s)", offset, date)
	}
}

// Format renders a resolved day into the Telegram message text (HTML
// parse mode). An empty day becomes a short notice instead of a lesson
// list. Fetch failures never reach this function.
func Format(day ejournal.Day, offset int, today time.Time) string {
	if len(day.Lessons) == 0 {
		return fmt.Sprintf("📅 Schedule for %s is empty", headerLabel(offset, today))
	}

	lines := []string{
		fmt.Sprintf("📅 <b>Schedule for %s</b>\n", headerLabel(offset, today)),
	}

	for i, lesson := range day.Lessons {
		var line strings.Builder
		fmt.Fprintf(&line, "<b>%d.</b> ", i+1)
		if lesson.Time != "" {
			fmt.Fprintf(&line, "⏰ %s - ", lesson.Time)
		}
		fmt.Fprintf(&line, "📚 %s", lesson.Subject)
		if lesson.Room != "" {
			fmt.Fprintf(&line, " 🏫 Room: %s", lesson.Room)
		}
		if lesson.Teacher != "" {
			fmt.Fprintf(&line, " 👨‍🏫 %s", lesson.Teacher)
		}
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n\n")
}
