package userstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timetablebot-backend/lib/timezone"
	"timetablebot-backend/services/userstore/db"

	_ "modernc.org/sqlite"
)

// Store keeps per-user bot state: who the user is, their raw session
// cookie string for the journal portal, and whether they want the daily
// notification. It deliberately knows nothing about schedules.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) TouchUser(ctx context.Context, chatID int64, firstName string) error {
	return s.qry.UpsertUser(ctx, db.UpsertUserParams{
		ChatID:    chatID,
		FirstName: firstName,
		LastSeen:  timezone.Now().Unix(),
	})
}

func (s Store) SetCookies(ctx context.Context, chatID int64, raw string) error {
	return s.qry.SetCookies(ctx, db.SetCookiesParams{
		ChatID:    chatID,
		Raw:       raw,
		UpdatedAt: timezone.Now().Unix(),
	})
}

// Cookies returns the stored raw cookie string, or "" when the user has
// not configured any yet.
func (s Store) Cookies(ctx context.Context, chatID int64) (string, error) {
	raw, err := s.qry.GetCookies(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return raw, err
}

func (s Store) SetNotifyEnabled(ctx context.Context, chatID int64, enabled bool) error {
	return s.qry.SetNotifyEnabled(ctx, db.SetNotifyEnabledParams{
		ChatID:  chatID,
		Enabled: enabled,
	})
}

// NotifyTargets lists chat ids that both enabled notifications and have
// cookies configured, in a stable order for the batch loop.
func (s Store) NotifyTargets(ctx context.Context) ([]int64, error) {
	return s.qry.ListNotifyTargets(ctx)
}

func (s Store) LastSeen(ctx context.Context, chatID int64) (time.Time, error) {
	user, err := s.qry.GetUser(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(user.LastSeen, 0).In(timezone.Location), nil
}
