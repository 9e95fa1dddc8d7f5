package models

import "time"

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Settings is the device-level client state. At most one row exists.
type Settings struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	Theme            Theme     `json:"theme" gorm:"type:varchar(16)"`
	DeviceID         string    `json:"device_id" gorm:"type:varchar(36)"`
	WantListCount    int       `json:"want_list_count"`
	ReservationCount int       `json:"reservation_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ThemeUpdate is the body of a theme change.
type ThemeUpdate struct {
	Theme Theme `json:"theme" validate:"required,oneof=light dark system"`
}

// Counts are the badge numbers shown in the navigation shell.
type Counts struct {
	Cart         int `json:"cart"`
	WantList     int `json:"want_list"`
	Reservations int `json:"reservations"`
}
