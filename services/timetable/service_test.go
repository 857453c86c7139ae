package timetable

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/telemetry"
	"timetablebot-backend/lib/timezone"
	"timetablebot-backend/services/userstore"
	storedb "timetablebot-backend/services/userstore/db"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const samplePage = `<html><body><script>
var scheduleData = [{"date":"2024-01-01","items":[{"lesson":"Art","starttime":"10:00:00","endtime":"10:45:00"}]}];
</script></body></html>`

func newFrozenService(t testing.TB, handler http.HandlerFunc) (Service, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:services/timetable")

	server := httptest.NewServer(handler)
	client := ejournal.NewClient(ejournal.ClientOptions{
		BaseUrl:          server.URL,
		ScheduleEndpoint: "/journal-schedule-action",
		MaxRetries:       1,
	})

	service := NewService(client)
	service.extractor.DebugArtifactPath = ""
	service.now = func() time.Time {
		return time.Date(2024, time.January, 1, 7, 0, 0, 0, timezone.Location)
	}

	return service, func() {
		server.Close()
		cleanup()
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	service, cleanup := newFrozenService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	})
	defer cleanup()

	text, err := service.Message(context.Background(), "jwt=token", 0)
	require.NoError(t, err)
	require.Contains(t, text, "today (01.01.2024)")
	require.Contains(t, text, "<b>1.</b>")
	require.Contains(t, text, "Art")
	require.Contains(t, text, "10:00 - 10:45")
}

func TestPipelinePortalDown(t *testing.T) {
	service, cleanup := newFrozenService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer cleanup()

	_, err := service.Message(context.Background(), "jwt=token", 0)
	require.ErrorIs(t, err, ejournal.ErrPortalUnavailable)
}

func TestPipelineUnrecognizedPage(t *testing.T) {
	service, cleanup := newFrozenService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><p>please sign in</p></html>"))
	})
	defer cleanup()

	_, err := service.Message(context.Background(), "jwt=stale", 0)
	require.ErrorIs(t, err, ejournal.ErrUnrecognizedPage)
}

type recordingSender struct {
	sent map[int64][]string
	fail map[int64]bool
}

func (r *recordingSender) Send(_ context.Context, chatID int64, text string) error {
	if r.fail[chatID] {
		return errors.New("chat blocked the bot")
	}
	if r.sent == nil {
		r.sent = map[int64][]string{}
	}
	r.sent[chatID] = append(r.sent[chatID], text)
	return nil
}

func newTestStore(t testing.TB) userstore.Store {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(storedb.Schema)
	require.NoError(t, err)
	return userstore.NewStore(sqlite)
}

func TestNotifyAllIsolatesFailures(t *testing.T) {
	service, cleanup := newFrozenService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	})
	defer cleanup()

	ctx := context.Background()
	store := newTestStore(t)
	for _, chatID := range []int64{1, 2, 3} {
		require.NoError(t, store.TouchUser(ctx, chatID, "user"))
		require.NoError(t, store.SetCookies(ctx, chatID, "jwt=token"))
		require.NoError(t, store.SetNotifyEnabled(ctx, chatID, true))
	}

	sender := &recordingSender{fail: map[int64]bool{2: true}}
	service.NotifyAll(ctx, store, sender)

	// user 2's send failed, 1 and 3 still got their schedule
	require.Len(t, sender.sent[1], 1)
	require.Empty(t, sender.sent[2])
	require.Len(t, sender.sent[3], 1)
	require.Contains(t, sender.sent[1][0], "Good morning")
	require.Contains(t, sender.sent[1][0], "Art")
}

func TestNotifyAllReportsPortalFailure(t *testing.T) {
	service, cleanup := newFrozenService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer cleanup()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.TouchUser(ctx, 1, "user"))
	require.NoError(t, store.SetCookies(ctx, 1, "jwt=stale"))
	require.NoError(t, store.SetNotifyEnabled(ctx, 1, true))

	sender := &recordingSender{}
	service.NotifyAll(ctx, store, sender)

	require.Len(t, sender.sent[1], 1)
	require.Contains(t, sender.sent[1][0], "cookies may have expired")
}
