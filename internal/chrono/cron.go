package chrono

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"timetablebot-backend/lib/timezone"

	"github.com/robfig/cron/v3"
)

// CronAPI is the interface anything depending on scheduled jobs should use.
type CronAPI interface {
	Cron(spec string, callback func()) error
}

// StandardCron implements CronAPI on `github.com/robfig/cron/v3`, running
// jobs in the portal's timezone.
type StandardCron struct {
	cron *cron.Cron
}

func NewStandardCron() StandardCron {
	cronner := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithLocation(timezone.Location),
	)
	cronner.Start()

	return StandardCron{cron: cronner}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

func (s StandardCron) Stop() {
	s.cron.Stop()
}

// SpecFromClock turns a "HH:MM" wall clock time into a daily cron spec.
func SpecFromClock(clock string) (string, error) {
	hourStr, minuteStr, found := strings.Cut(clock, ":")
	if !found {
		return "", fmt.Errorf("expected HH:MM, got %q", clock)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("bad hour in %q", clock)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("bad minute in %q", clock)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"err", err}, keysAndValues...)
	slog.Error(fmt.Sprintf("cron: %s", msg), args...)
}
