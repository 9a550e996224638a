package store

import (
	"context"
	"database/sql"
	"time"
)

// SavedFilter is a named query an operator keeps for a view.
type SavedFilter struct {
	ID        string
	View      string
	Name      string
	Query     string
	CreatedAt time.Time
}

// RecentClient is a client the operator has worked in recently.
type RecentClient struct {
	ClientID   string
	Name       string
	LastUsedAt time.Time
}

// PrefRepo handles key/value preferences.
type PrefRepo struct {
	db *sql.DB
}

func NewPrefRepo(db *sql.DB) *PrefRepo { return &PrefRepo{db: db} }

func (r *PrefRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO preferences(key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`, key, value)
	return err
}

// Get returns the stored value, or fallback when the key is absent.
func (r *PrefRepo) Get(ctx context.Context, key, fallback string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return fallback, nil
		}
		return "", err
	}
	return v, nil
}

// FilterRepo handles saved filters.
type FilterRepo struct {
	db *sql.DB
}

func NewFilterRepo(db *sql.DB) *FilterRepo { return &FilterRepo{db: db} }

func (r *FilterRepo) Save(ctx context.Context, f SavedFilter) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO saved_filters(id, view, name, query, created_at) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name, query=excluded.query;
	`, f.ID, f.View, f.Name, f.Query, f.CreatedAt)
	return err
}

func (r *FilterRepo) ListByView(ctx context.Context, view string) ([]SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, view, name, query, created_at FROM saved_filters
	WHERE view = ? ORDER BY name`, view)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SavedFilter
	for rows.Next() {
		var f SavedFilter
		if err := rows.Scan(&f.ID, &f.View, &f.Name, &f.Query, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FilterRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
	return err
}

// ClientRepo tracks recently used clients for the jump picker.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// Touch records a client selection, updating the timestamp if it exists.
func (r *ClientRepo) Touch(ctx context.Context, clientID, name string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO recent_clients(client_id, name, last_used_at) VALUES (?, ?, ?)
	ON CONFLICT(client_id) DO UPDATE SET name=excluded.name, last_used_at=excluded.last_used_at;
	`, clientID, name, Now())
	return err
}

// Recent returns clients ordered by most recently used, capped at limit.
func (r *ClientRepo) Recent(ctx context.Context, limit int) ([]RecentClient, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT client_id, name, last_used_at FROM recent_clients
	ORDER BY last_used_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecentClient
	for rows.Next() {
		var c RecentClient
		if err := rows.Scan(&c.ClientID, &c.Name, &c.LastUsedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
