package ejournal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"timetablebot-backend/lib/restyutil"
	"timetablebot-backend/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/ejournal")

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseUrl string
	// the path of the schedule page, e.g. "/journal-schedule-action"
	ScheduleEndpoint string
	// zero means 30 seconds
	Timeout time.Duration
	// zero means 3 attempts
	MaxRetries int
}

// Client fetches the session-authenticated schedule page. It holds no
// connection state between calls: every attempt builds and tears down its
// own http client, a simplicity trade-off since attempts are infrequent.
type Client struct {
	opts ClientOptions

	// overridable for tests
	sleep func(time.Duration)
	now   func() time.Time
	// exponential backoff step, 2^attempt of these between attempts
	backoffUnit time.Duration

	instrumentOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &Client{
		opts:        opts,
		sleep:       time.Sleep,
		now:         timezone.Now,
		backoffUnit: time.Second,
	}
}

func (c *Client) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	c.instrumentOutput = output
}

func (c *Client) newAttemptClient(cookies map[string]string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(c.opts.BaseUrl)
	client.SetTimeout(c.opts.Timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeaders(map[string]string{
		"user-agent":                desktopUserAgent,
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"accept-language":           "ru-RU,ru;q=0.9,en;q=0.8",
		"dnt":                       "1",
		"upgrade-insecure-requests": "1",
	})
	for name, value := range cookies {
		client.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	restyutil.InstrumentClient(client, tracer, c.instrumentOutput)
	return client
}

// FetchSchedulePage retrieves the raw HTML of the schedule page using the
// given session cookies. It retries on any non-200 status, timeout or
// transport error, sleeping 2^attempt backoff units between attempts.
// Exhausting every attempt yields ErrPortalUnavailable, never a panic.
func (c *Client) FetchSchedulePage(ctx context.Context, cookies map[string]string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchSchedulePage")
	defer span.End()

	today := c.now().Format("2006-01-02")

	var lastErr error
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffUnit << (attempt - 1)
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, "context cancelled")
				return "", fmt.Errorf("%w: %v", ErrPortalUnavailable, ctx.Err())
			default:
			}
			c.sleep(delay)
		}

		res, err := c.newAttemptClient(cookies).R().
			SetContext(ctx).
			SetQueryParam("date", today).
			Get(c.opts.ScheduleEndpoint)
		if err != nil {
			lastErr = err
			slog.WarnContext(
				ctx, "schedule page request failed",
				"attempt", attempt+1,
				"err", err,
			)
			continue
		}
		if res.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("http %d", res.StatusCode())
			slog.WarnContext(
				ctx, "unexpected status for schedule page",
				"attempt", attempt+1,
				"status", res.StatusCode(),
			)
			continue
		}

		slog.InfoContext(ctx, "fetched schedule page", "attempt", attempt+1)
		return res.String(), nil
	}

	span.SetStatus(codes.Error, "all attempts exhausted")
	slog.ErrorContext(
		ctx, "all attempts to fetch the schedule page exhausted",
		"attempts", c.opts.MaxRetries,
		"err", lastErr,
	)
	return "", fmt.Errorf("%w: %v", ErrPortalUnavailable, lastErr)
}

// TestConnection reports whether the schedule page is reachable with the
// given cookies. Used right after a user submits a new cookie string.
func (c *Client) TestConnection(ctx context.Context, cookies map[string]string) bool {
	_, err := c.FetchSchedulePage(ctx, cookies)
	return err == nil
}
