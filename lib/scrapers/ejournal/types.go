package ejournal

import (
	"errors"
	"time"
)

// Lesson is one scheduled class occurrence. Subject is never empty on a
// valid record; every other field may be "" and is then omitted from any
// rendered output.
type Lesson struct {
	Time    string // "HH:MM - HH:MM"
	Subject string
	Teacher string
	Room    string
	Group   string
}

// Day pairs a resolved calendar date with its lessons in source order.
// The date may differ from the requested one when the proximity fallback
// substituted the nearest day that actually has lesson data.
type Day struct {
	Date    time.Time
	Lessons []Lesson
}

// ErrPortalUnavailable means no 200 response was obtained from the portal
// after all retry attempts. The usual cause is an expired session.
var ErrPortalUnavailable = errors.New("journal portal unavailable")

// ErrUnrecognizedPage means a page was fetched but neither the embedded
// schedule payload nor the table heuristic produced any lesson. This is
// deliberately distinct from an empty day: an unrecognized page silently
// reported as "no lessons" would mislead the user.
var ErrUnrecognizedPage = errors.New("no schedule found in page")
