package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type User struct {
	ChatID        int64
	FirstName     string
	LastSeen      int64
	NotifyEnabled bool
}

type UpsertUserParams struct {
	ChatID    int64
	FirstName string
	LastSeen  int64
}

const upsertUser = `
INSERT INTO users (chat_id, first_name, last_seen)
VALUES (?, ?, ?)
ON CONFLICT (chat_id) DO UPDATE SET
    first_name = excluded.first_name,
    last_seen = excluded.last_seen
`

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) error {
	_, err := q.db.ExecContext(ctx, upsertUser, arg.ChatID, arg.FirstName, arg.LastSeen)
	return err
}

const getUser = `
SELECT chat_id, first_name, last_seen, notify_enabled
FROM users WHERE chat_id = ?
`

func (q *Queries) GetUser(ctx context.Context, chatID int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, chatID)
	var u User
	err := row.Scan(&u.ChatID, &u.FirstName, &u.LastSeen, &u.NotifyEnabled)
	return u, err
}

const setNotifyEnabled = `
UPDATE users SET notify_enabled = ? WHERE chat_id = ?
`

type SetNotifyEnabledParams struct {
	ChatID  int64
	Enabled bool
}

func (q *Queries) SetNotifyEnabled(ctx context.Context, arg SetNotifyEnabledParams) error {
	_, err := q.db.ExecContext(ctx, setNotifyEnabled, arg.Enabled, arg.ChatID)
	return err
}

type SetCookiesParams struct {
	ChatID    int64
	Raw       string
	UpdatedAt int64
}

const setCookies = `
INSERT INTO cookies (chat_id, raw, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (chat_id) DO UPDATE SET
    raw = excluded.raw,
    updated_at = excluded.updated_at
`

func (q *Queries) SetCookies(ctx context.Context, arg SetCookiesParams) error {
	_, err := q.db.ExecContext(ctx, setCookies, arg.ChatID, arg.Raw, arg.UpdatedAt)
	return err
}

const getCookies = `
SELECT raw FROM cookies WHERE chat_id = ?
`

func (q *Queries) GetCookies(ctx context.Context, chatID int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getCookies, chatID)
	var raw string
	err := row.Scan(&raw)
	return raw, err
}

const listNotifyTargets = `
SELECT users.chat_id FROM users
JOIN cookies ON cookies.chat_id = users.chat_id
WHERE users.notify_enabled = 1
ORDER BY users.chat_id
`

func (q *Queries) ListNotifyTargets(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listNotifyTargets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, err
		}
		targets = append(targets, chatID)
	}
	return targets, rows.Err()
}
