package models

import "time"

// Session holds the tokens issued by the store API. At most one row exists.
type Session struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	AccessToken  string    `json:"-" gorm:"type:text"`
	SessionToken string    `json:"-" gorm:"type:text"`
	UserID       string    `json:"user_id" gorm:"type:varchar(64)"`
	Email        string    `json:"email" gorm:"type:varchar(255)"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExpiredAt reports whether the session is no longer usable at t.
// A zero ExpiresAt never expires locally; the API still decides.
func (s Session) ExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}
