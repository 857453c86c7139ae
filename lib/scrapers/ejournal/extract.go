package ejournal

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"timetablebot-backend/lib/htmlutil"
	"timetablebot-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// how much of an unrecognized page is kept for offline inspection
const debugArtifactLimit = 3000

// DefaultDebugArtifactPath is where unrecognized pages are dumped.
const DefaultDebugArtifactPath = "debug_schedule.html"

// extraction is what a single strategy produced from a page.
type extraction struct {
	lessons []Lesson
	// resolved date of the lessons, zero when the strategy cannot know it
	date time.Time
	// the page's schedule data format was recognized, even if it held
	// no lessons. distinguishes an empty day from an unreadable page.
	recognized bool
}

type strategy interface {
	name() string
	extract(ctx context.Context, page string, target time.Time) extraction
}

// Extractor turns a raw schedule page into the lessons of one day. It
// tries the embedded structured payload first and falls back to scraping
// any table in the document; the strategies run in that fixed order with
// fallthrough on an empty result.
type Extractor struct {
	// defaults to DefaultDebugArtifactPath, may be "" to disable
	DebugArtifactPath string

	strategies []strategy
}

func NewExtractor() Extractor {
	return Extractor{
		DebugArtifactPath: DefaultDebugArtifactPath,
		strategies: []strategy{
			structuredPayload{},
			tableHeuristic{},
		},
	}
}

// Extract selects the lessons for the target date from the page.
// Outcomes: a day with lessons; a day with none (the format was recognized
// and the date legitimately has no lessons); or ErrUnrecognizedPage, in
// which case a fragment of the page is persisted for diagnostics.
func (e Extractor) Extract(ctx context.Context, page string, target time.Time) (Day, error) {
	ctx, span := tracer.Start(ctx, "extractor:Extract")
	defer span.End()

	recognized := false
	for _, s := range e.strategies {
		result := s.extract(ctx, page, target)
		recognized = recognized || result.recognized

		if len(result.lessons) == 0 {
			slog.DebugContext(ctx, "strategy found no lessons", "strategy", s.name())
			continue
		}

		date := result.date
		if date.IsZero() {
			date = target
		}
		span.SetAttributes(
			attribute.String("strategy", s.name()),
			attribute.Int("lessons", len(result.lessons)),
		)
		return Day{Date: date, Lessons: result.lessons}, nil
	}

	if recognized {
		slog.InfoContext(ctx, "schedule is legitimately empty", "date", target.Format("2006-01-02"))
		return Day{Date: target}, nil
	}

	span.SetStatus(codes.Error, ErrUnrecognizedPage.Error())
	e.writeDebugArtifact(ctx, page)
	return Day{}, ErrUnrecognizedPage
}

// best effort, the artifact is a diagnostics side channel and must
// never fail the extraction
func (e Extractor) writeDebugArtifact(ctx context.Context, page string) {
	if e.DebugArtifactPath == "" {
		return
	}
	fragment := []rune(page)
	if len(fragment) > debugArtifactLimit {
		fragment = fragment[:debugArtifactLimit]
	}
	err := os.WriteFile(e.DebugArtifactPath, []byte(string(fragment)), 0644)
	if err != nil {
		slog.WarnContext(ctx, "failed to write debug artifact", "path", e.DebugArtifactPath, "err", err)
		return
	}
	slog.InfoContext(ctx, "wrote unrecognized page fragment", "path", e.DebugArtifactPath)
}

// the schedule payload the portal embeds for its own front end:
// a script-assigned JSON array of day objects
type dayPayload struct {
	Date          string        `json:"date"`
	DateFormatted string        `json:"dateFormatted"`
	Items         []itemPayload `json:"items"`
}

type itemPayload struct {
	StartTime string `json:"starttime"`
	EndTime   string `json:"endtime"`
	Lesson    string `json:"lesson"`
	Teacher   string `json:"teacher"`
	Room      string `json:"room"`
	GroupName string `json:"group_name"`
}

var scheduleDataRegex = regexp.MustCompile(`(?s)var scheduleData = (\[.*?\]);`)

// how many leading buckets the proximity fallback inspects
const proximityWindow = 5

type structuredPayload struct{}

func (structuredPayload) name() string { return "structured-payload" }

func (structuredPayload) extract(ctx context.Context, page string, target time.Time) extraction {
	ctx, span := tracer.Start(ctx, "strategy:structuredPayload")
	defer span.End()

	groups := scheduleDataRegex.FindStringSubmatch(page)
	if len(groups) < 2 {
		slog.DebugContext(ctx, "no scheduleData variable in page")
		return extraction{}
	}

	var days []dayPayload
	err := json.Unmarshal([]byte(groups[1]), &days)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal scheduleData")
		slog.WarnContext(ctx, "malformed scheduleData payload", "err", err)
		return extraction{}
	}
	slog.DebugContext(ctx, "decoded schedule payload", "days", len(days))

	targetDate := target.Format("2006-01-02")
	for _, day := range days {
		if day.Date != targetDate {
			continue
		}
		lessons := mapItems(day.Items)
		if len(lessons) > 0 {
			return extraction{lessons: lessons, date: target, recognized: true}
		}

		// the exact date exists but holds nothing usable, take the
		// nearest day that does
		fallback, ok := nearestNonEmpty(ctx, days)
		fallback.recognized = true
		if !ok {
			fallback.date = target
		}
		return fallback
	}

	// no bucket for the requested date at all
	result, _ := nearestNonEmpty(ctx, days)
	return result
}

func nearestNonEmpty(ctx context.Context, days []dayPayload) (extraction, bool) {
	window := days
	if len(window) > proximityWindow {
		window = window[:proximityWindow]
	}
	for _, day := range window {
		lessons := mapItems(day.Items)
		if len(lessons) == 0 {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", day.Date, timezone.Location)
		if err != nil {
			slog.WarnContext(ctx, "unparsable bucket date", "date", day.Date)
		}
		slog.InfoContext(
			ctx, "substituting nearest day with lessons",
			"date", day.Date,
			"lessons", len(lessons),
		)
		return extraction{lessons: lessons, date: date, recognized: true}, true
	}
	return extraction{}, false
}

func mapItems(items []itemPayload) []Lesson {
	var lessons []Lesson
	for _, item := range items {
		if item.Lesson == "" {
			continue
		}
		lessons = append(lessons, Lesson{
			Time:    formatTimeRange(item.StartTime, item.EndTime),
			Subject: item.Lesson,
			Teacher: item.Teacher,
			Room:    item.Room,
			Group:   item.GroupName,
		})
	}
	return lessons
}

// "08:00:00"/"08:45:00" -> "08:00 - 08:45"
func formatTimeRange(start, end string) string {
	start = truncateClock(start)
	end = truncateClock(end)
	if start == "" && end == "" {
		return ""
	}
	return start + " - " + end
}

func truncateClock(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

var clockPrefixRegex = regexp.MustCompile(`^\d{1,2}:\d{2}`)

type tableHeuristic struct{}

func (tableHeuristic) name() string { return "table-heuristic" }

// last resort when the structured payload is absent: walk every table in
// the document, treat any cell starting with a clock time as a lesson
// start marker and read the following cells as subject, room and teacher.
func (tableHeuristic) extract(ctx context.Context, page string, _ time.Time) extraction {
	ctx, span := tracer.Start(ctx, "strategy:tableHeuristic")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		slog.WarnContext(ctx, "unparsable html page", "err", err)
		return extraction{}
	}

	var lessons []Lesson
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, htmlutil.SelectionText(cell))
		})

		for i, text := range texts {
			if !clockPrefixRegex.MatchString(text) || i+1 >= len(texts) {
				continue
			}
			lesson := Lesson{
				Time:    text,
				Subject: texts[i+1],
			}
			if i+2 < len(texts) {
				lesson.Room = texts[i+2]
			}
			if i+3 < len(texts) {
				lesson.Teacher = texts[i+3]
			}
			if lesson.Subject == "" {
				continue
			}
			lessons = append(lessons, lesson)
		}
	})

	span.SetAttributes(attribute.Int("lessons", len(lessons)))
	return extraction{lessons: lessons}
}
