package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus tracks a reservation through store approval.
type ReservationStatus string

const (
	ReservationPending     ReservationStatus = "pending"
	ReservationForApproval ReservationStatus = "for_approval"
	ReservationApproved    ReservationStatus = "approved"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationForApproval, ReservationApproved:
		return true
	}
	return false
}

// Reservation is a hold on a product from an upcoming release.
type Reservation struct {
	ID        string            `json:"id"`
	Product   Product           `json:"product"`
	Quantity  int               `json:"quantity"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// ReservedProduct is the local cache of products already on the user's
// reservation list. It keeps the selection screen from offering them again.
type ReservedProduct struct {
	ProductID     string            `json:"product_id" gorm:"primaryKey;type:varchar(64)"`
	ReservationID string            `json:"reservation_id" gorm:"type:varchar(64)"`
	Status        ReservationStatus `json:"status" gorm:"type:varchar(16)"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ReservationSelectionItem is one product picked on the selection screen.
type ReservationSelectionItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=20"`
}

// ReservationSelection is the multi-select result for a release.
type ReservationSelection struct {
	ReleaseID string                     `json:"release_id" validate:"required"`
	Items     []ReservationSelectionItem `json:"items" validate:"required,min=1,dive"`
}

// ReservationCandidate is a release product as shown on the selection screen.
type ReservationCandidate struct {
	Product    Product `json:"product"`
	Selectable bool    `json:"selectable"`
	Reason     string  `json:"reason,omitempty"`
}

// ReservationPreviewLine is one row of the confirmation dialog.
type ReservationPreviewLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ReservationPreview is the confirmation dialog model.
type ReservationPreview struct {
	Release  Release                  `json:"release"`
	Lines    []ReservationPreviewLine `json:"lines"`
	Quantity int                      `json:"quantity"`
	Total    decimal.Decimal          `json:"total"`
}

// ReservationItemRequest is the body of an add-to-reservation call.
type ReservationItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ReservationConfirmation is the result of a committed selection.
type ReservationConfirmation struct {
	Added        []Reservation `json:"added"`
	Reservations []Reservation `json:"reservations"`
	Warning      string        `json:"warning,omitempty"`
}

// ReservationStatusEvent is published by the store when it moves a
// reservation through approval.
type ReservationStatusEvent struct {
	ProductID     string            `json:"product_id"`
	ReservationID string            `json:"reservation_id,omitempty"`
	Status        ReservationStatus `json:"status"`
}
