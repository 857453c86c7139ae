package timetable

import (
	"fmt"
	"strings"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/timezone"

	ics "github.com/arran4/golang-ical"
)

// ExportICS renders a resolved day as an iCalendar document, one VEVENT
// per lesson. Lessons without a parsable time range become all-day-less
// hour slots starting at the day's first school hour so the export never
// drops a lesson silently.
func ExportICS(day ejournal.Day) (string, error) {
	if len(day.Lessons) == 0 {
		return "", fmt.Errorf("nothing to export for %s", day.Date.Format("2006-01-02"))
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timetablebot//schedule export//EN")

	for i, lesson := range day.Lessons {
		start, end := lessonTimes(day.Date, lesson, i)

		event := cal.AddEvent(fmt.Sprintf(
			"%s-%d@timetablebot",
			day.Date.Format("20060102"), i+1,
		))
		event.SetCreatedTime(timezone.Now())
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(lesson.Subject)
		if lesson.Room != "" {
			event.SetLocation("Room " + lesson.Room)
		}
		var notes []string
		if lesson.Teacher != "" {
			notes = append(notes, lesson.Teacher)
		}
		if lesson.Group != "" {
			notes = append(notes, "Group "+lesson.Group)
		}
		if len(notes) > 0 {
			event.SetDescription(strings.Join(notes, ", "))
		}
	}

	return cal.Serialize(), nil
}

// fallback slot for lessons with no usable time range
const fallbackFirstHour = 8

func lessonTimes(date time.Time, lesson ejournal.Lesson, index int) (time.Time, time.Time) {
	start, end, ok := parseTimeRange(lesson.Time)
	if !ok {
		slotStart := time.Date(
			date.Year(), date.Month(), date.Day(),
			fallbackFirstHour+index, 0, 0, 0, timezone.Location,
		)
		return slotStart, slotStart.Add(time.Hour)
	}

	toTime := func(hm [2]int) time.Time {
		return time.Date(
			date.Year(), date.Month(), date.Day(),
			hm[0], hm[1], 0, 0, timezone.Location,
		)
	}
	return toTime(start), toTime(end)
}

// "08:00 - 08:45" -> (8,0), (8,45)
func parseTimeRange(s string) ([2]int, [2]int, bool) {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return [2]int{}, [2]int{}, false
	}
	start, ok := parseClock(parts[0])
	if !ok {
		return [2]int{}, [2]int{}, false
	}
	end, ok := parseClock(parts[1])
	if !ok {
		return [2]int{}, [2]int{}, false
	}
	return start, end, true
}

func parseClock(s string) ([2]int, bool) {
	var hour, minute int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute)
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return [2]int{}, false
	}
	return [2]int{hour, minute}, true
}
