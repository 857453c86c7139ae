package timetable

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/timezone"
	"timetablebot-backend/services/userstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/timetable")

// Sender delivers a rendered message to a chat. The bot implements it;
// tests substitute their own.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Service runs the fetch, extract, format pipeline against the journal
// portal. It is stateless between calls: every request parses its own
// cookie jar and fetches its own page.
type Service struct {
	client    *ejournal.Client
	extractor ejournal.Extractor

	// overridable for tests
	now func() time.Time
}

func NewService(client *ejournal.Client) Service {
	return Service{
		client:    client,
		extractor: ejournal.NewExtractor(),
		now:       timezone.Now,
	}
}

// Day fetches and extracts the schedule for today + offset using the
// given raw cookie string. The returned error is one of the sentinel
// values of the ejournal package, never a panic.
func (s Service) Day(ctx context.Context, rawCookies string, offset int) (ejournal.Day, error) {
	ctx, span := tracer.Start(ctx, "timetable:Day")
	defer span.End()
	span.SetAttributes(attribute.Int("offset", offset))

	jar := ejournal.ParseCookieString(rawCookies)
	page, err := s.client.FetchSchedulePage(ctx, jar)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return ejournal.Day{}, err
	}

	target := timezone.DayWithOffset(s.now(), offset)
	day, err := s.extractor.Extract(ctx, page, target)
	if err != nil {
		span.SetStatus(codes.Error, "extraction failed")
		return ejournal.Day{}, err
	}
	return day, nil
}

// Message is Day followed by Format: the complete pipeline from cookie
// string to user-facing text.
func (s Service) Message(ctx context.Context, rawCookies string, offset int) (string, error) {
	day, err := s.Day(ctx, rawCookies, offset)
	if err != nil {
		return "", err
	}
	return Format(day, offset, s.now()), nil
}

// TestConnection probes the portal with the given cookies without
// extracting anything.
func (s Service) TestConnection(ctx context.Context, rawCookies string) bool {
	return s.client.TestConnection(ctx, ejournal.ParseCookieString(rawCookies))
}

const morningGreeting = "🌅 <b>Good morning! Here is your schedule for today:</b>\n\n"

const couldNotRetrieve = "❌ Could not retrieve the schedule. Your cookies may have expired, try updating them."

// NotifyAll sends today's schedule to every user that enabled the daily
// notification. Users are processed sequentially and a failure for one
// never aborts the batch.
func (s Service) NotifyAll(ctx context.Context, store userstore.Store, sender Sender) {
	ctx, span := tracer.Start(ctx, "timetable:NotifyAll")
	defer span.End()

	targets, err := store.NotifyTargets(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list notify targets")
		slog.ErrorContext(ctx, "failed to list notify targets", "err", err)
		return
	}
	slog.InfoContext(ctx, "sending daily schedules", "users", len(targets))

	for _, chatID := range targets {
		rawCookies, err := store.Cookies(ctx, chatID)
		if err != nil || rawCookies == "" {
			slog.WarnContext(ctx, "skipping user without cookies", "chat_id", chatID, "err", err)
			continue
		}

		// the daily job is always about today
		text, err := s.Message(ctx, rawCookies, 0)
		if err != nil {
			if errors.Is(err, ejournal.ErrPortalUnavailable) || errors.Is(err, ejournal.ErrUnrecognizedPage) {
				sendErr := sender.Send(ctx, chatID, couldNotRetrieve)
				if sendErr != nil {
					slog.ErrorContext(ctx, "failed to send failure notice", "chat_id", chatID, "err", sendErr)
				}
			}
			slog.ErrorContext(ctx, "failed to build daily schedule", "chat_id", chatID, "err", err)
			continue
		}

		err = sender.Send(ctx, chatID, morningGreeting+text)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send daily schedule", "chat_id", chatID, "err", err)
			continue
		}
		slog.InfoContext(ctx, "daily schedule sent", "chat_id", chatID)
	}
}
