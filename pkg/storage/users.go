package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is an account created through a federated identity provider.
type User struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	Provider          string
	ProviderID        string
	PhotoURL          string
	Phone             string
	Region            string
	NotificationToken string
	EmailVerified     bool
	Blocked           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName joins the user's name parts for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ProfileComplete reports whether the account finished onboarding: first and
// last name, phone, and region are all set.
func (u *User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != "" && u.Phone != "" && u.Region != ""
}

// UserStore persists user accounts.
type UserStore struct {
	db *sql.DB
}

// NewUserStore wraps an open database pool.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, first_name, last_name, provider, provider_id, photo_url,
	phone, region, notification_token, email_verified, blocked, created_at, updated_at`

// GetByEmail fetches the account registered under the email address.
// Returns ErrNotFound when no such account exists.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return u, nil
}

// Create inserts a new account and returns it with generated fields set.
func (s *UserStore) Create(ctx context.Context, u *User) (*User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, provider, provider_id, photo_url,
			phone, region, notification_token, email_verified, blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Provider, u.ProviderID, u.PhotoURL,
		u.Phone, u.Region, u.NotificationToken, u.EmailVerified, u.Blocked, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// UpdateNotificationToken stores the device push token for an account.
func (s *UserStore) UpdateNotificationToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET notification_token = $1, updated_at = NOW() WHERE id = $2",
		token, id,
	)
	if err != nil {
		return fmt.Errorf("updating notification token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating notification token: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Provider, &u.ProviderID, &u.PhotoURL,
		&u.Phone, &u.Region, &u.NotificationToken, &u.EmailVerified, &u.Blocked, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
