package ejournal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timetablebot-backend/lib/telemetry"
	"timetablebot-backend/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, iso string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", iso, timezone.Location)
	require.NoError(t, err)
	return parsed
}

func TestExtractExactDate(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	page := `<html><script>
var scheduleData = [
  {"date":"2024-01-01","items":[{"lesson":"History","starttime":"08:00:00","endtime":"08:45:00"}]},
  {"date":"2024-01-02","items":[
    {"lesson":"Math","starttime":"08:00:00","endtime":"08:45:00","teacher":"Ivanova","room":"204"},
    {"lesson":"Physics","starttime":"09:00:00","endtime":"09:45:00","group_name":"B"}
  ]}
];</script></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-02"))
	require.NoError(t, err)
	require.Equal(t, day(t, "2024-01-02"), result.Date)

	expect := []Lesson{
		{Time: "08:00 - 08:45", Subject: "Math", Teacher: "Ivanova", Room: "204"},
		{Time: "09:00 - 09:45", Subject: "Physics", Group: "B"},
	}
	if diff := cmp.Diff(expect, result.Lessons); diff != "" {
		t.Fatalf("lessons mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractProximityFallback(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	// the requested date has a bucket with no items, the nearest day
	// with lessons gets substituted and its date is propagated
	page := `<html><script>var scheduleData = [
  {"date":"2024-01-01","items":[]},
  {"date":"2024-01-03","items":[{"lesson":"Art","starttime":"10:00:00","endtime":"10:45:00"}]}
];</script></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Equal(t, day(t, "2024-01-03"), result.Date)
	require.Len(t, result.Lessons, 1)
	require.Equal(t, "Art", result.Lessons[0].Subject)
}

func TestExtractFallbackWhenDateAbsent(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	// no bucket carries the requested date at all, the first non-empty
	// bucket in the window wins and its date is propagated
	page := `<html><script>var scheduleData = [
  {"date":"2024-01-02","items":[]},
  {"date":"2024-01-03","items":[{"lesson":"Music","starttime":"11:00:00","endtime":"11:45:00"}]}
];</script></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Equal(t, day(t, "2024-01-03"), result.Date)
	require.Len(t, result.Lessons, 1)
	require.Equal(t, "Music", result.Lessons[0].Subject)
	require.Equal(t, "11:00 - 11:45", result.Lessons[0].Time)
}

func TestExtractProximityWindowIsBounded(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	// lessons exist only beyond the first five buckets, so the payload
	// yields nothing and there is no table to fall back on
	page := `<html><script>var scheduleData = [
  {"date":"2024-01-01","items":[]},
  {"date":"2024-01-02","items":[]},
  {"date":"2024-01-03","items":[]},
  {"date":"2024-01-04","items":[]},
  {"date":"2024-01-05","items":[]},
  {"date":"2024-01-06","items":[{"lesson":"Far away"}]}
];</script></html>`

	extractor := NewExtractor()
	extractor.DebugArtifactPath = ""
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Empty(t, result.Lessons)
	require.Equal(t, day(t, "2024-01-01"), result.Date)
}

func TestExtractDiscardsSubjectlessItems(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	page := `<html><script>var scheduleData = [
  {"date":"2024-01-01","items":[
    {"starttime":"08:00:00","endtime":"08:45:00","teacher":"Ivanova"},
    {"lesson":"","room":"101"},
    {"lesson":"Biology","starttime":"09:00:00","endtime":"09:45:00"}
  ]}
];</script></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Len(t, result.Lessons, 1)
	require.Equal(t, "Biology", result.Lessons[0].Subject)
}

func TestExtractTableHeuristic(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	page := `<html><body><table>
<tr><td>Period</td><td>Subject</td></tr>
<tr><td>09:00</td><td>Physics</td><td>101</td></tr>
<tr><td>10:00</td><td>Chemistry</td><td>202</td><td>Petrov</td></tr>
<tr><td>just text</td><td>no time here</td></tr>
</table></body></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)

	expect := []Lesson{
		{Time: "09:00", Subject: "Physics", Room: "101"},
		{Time: "10:00", Subject: "Chemistry", Room: "202", Teacher: "Petrov"},
	}
	if diff := cmp.Diff(expect, result.Lessons); diff != "" {
		t.Fatalf("lessons mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMalformedPayloadFallsThrough(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	page := `<html><script>var scheduleData = [{broken json];</script>
<table><tr><td>08:30</td><td>Geometry</td></tr></table></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Len(t, result.Lessons, 1)
	require.Equal(t, "Geometry", result.Lessons[0].Subject)
}

func TestExtractEmptyDayIsNotAFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	// the payload decodes and the requested date exists, it just has
	// no lessons anywhere nearby
	page := `<html><script>var scheduleData = [
  {"date":"2024-01-01","items":[]}
];</script></html>`

	extractor := NewExtractor()
	result, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.NoError(t, err)
	require.Empty(t, result.Lessons)
	require.Equal(t, day(t, "2024-01-01"), result.Date)
}

func TestExtractUnrecognizedPage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	artifact := filepath.Join(t.TempDir(), "debug_schedule.html")
	extractor := NewExtractor()
	extractor.DebugArtifactPath = artifact

	_, err := extractor.Extract(context.Background(), "<html><p>maintenance page</p></html>", day(t, "2024-01-01"))
	require.ErrorIs(t, err, ErrUnrecognizedPage)

	contents, readErr := os.ReadFile(artifact)
	require.NoError(t, readErr)
	require.Contains(t, string(contents), "maintenance page")
}

func TestExtractArtifactTruncation(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ejournal")
	defer cleanup()

	artifact := filepath.Join(t.TempDir(), "debug_schedule.html")
	extractor := NewExtractor()
	extractor.DebugArtifactPath = artifact

	page := "<html>" + strings.Repeat("я", 10000) + "</html>"
	_, err := extractor.Extract(context.Background(), page, day(t, "2024-01-01"))
	require.ErrorIs(t, err, ErrUnrecognizedPage)

	contents, readErr := os.ReadFile(artifact)
	require.NoError(t, readErr)
	require.LessOrEqual(t, len([]rune(string(contents))), 3000)
}
