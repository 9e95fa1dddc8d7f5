package models

import "time"

// FulfillmentPreference is how a customer usually receives orders.
type FulfillmentPreference string

const (
	FulfillmentPickup   FulfillmentPreference = "pickup"
	FulfillmentDelivery FulfillmentPreference = "delivery"
)

// Address is a postal address used for delivery orders.
type Address struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	Province   string `json:"province" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
}

// Empty reports whether no address line was given.
func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == "" && a.PostalCode == ""
}

// User is the signed-in customer. The last profile fetched is cached locally.
type User struct {
	ID             string                `json:"id" gorm:"primaryKey;type:varchar(64)"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone,omitempty"`
	Address        Address               `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Fulfillment    FulfillmentPreference `json:"fulfillment_preference"`
	PreferredStore string                `json:"preferred_store,omitempty"`
	UpdatedAt      time.Time             `json:"-"`
}

// ProfileUpdate is the editable subset of a user profile.
type ProfileUpdate struct {
	FirstName      string                `json:"first_name" validate:"required,max=100"`
	LastName       string                `json:"last_name" validate:"omitempty,max=100"`
	Phone          string                `json:"phone" validate:"omitempty,max=30"`
	Address        *Address              `json:"address,omitempty" validate:"omitempty"`
	Fulfillment    FulfillmentPreference `json:"fulfillment_preference" validate:"omitempty,oneof=pickup delivery"`
	PreferredStore string                `json:"preferred_store,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,store_email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"required,store_email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Password  string `json:"password" validate:"required,store_password"`
}

// AuthResponse is what the store API returns after login or registration.
type AuthResponse struct {
	AccessToken  string     `json:"access_token"`
	SessionToken string     `json:"session_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	User         User       `json:"user"`
}
