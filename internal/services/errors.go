package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrStockLimit       = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity  = errors.New("quantity must not be negative")
	ErrNotInCart        = errors.New("product is not in the cart")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidPromo     = errors.New("promo code is not valid")
	ErrPaymentRedirect  = errors.New("payment redirect rejected")
	ErrUnknownRelease   = errors.New("release not found")
	ErrNotCancellable   = errors.New("only pending reservations can be cancelled")
	ErrOnWantList       = errors.New("product is already on the want list")
	ErrSearchSuperseded = errors.New("search superseded by a newer term")

	// ErrNotSelectable is the parent of every reservation selection rule.
	ErrNotSelectable      = errors.New("product cannot be reserved")
	ErrAlreadyReserved    = fmt.Errorf("%w: already on the reservation list", ErrNotSelectable)
	ErrNotLatestRelease   = fmt.Errorf("%w: only the latest release can be reserved", ErrNotSelectable)
	ErrReservationClosed  = fmt.Errorf("%w: reservation cutoff has passed", ErrNotSelectable)
	ErrNotInRelease       = fmt.Errorf("%w: product is not part of the release", ErrNotSelectable)
	ErrDuplicateSelection = fmt.Errorf("%w: product selected more than once", ErrNotSelectable)
)

// SelectionError names the product that broke a selection rule.
type SelectionError struct {
	ProductID string
	Err       error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("product %s: %v", e.ProductID, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// CommitError reports a reservation commit that stopped part way. Added
// holds the items the API accepted before the failure.
type CommitError struct {
	ProductID string
	Added     []models.Reservation
	Err       error
}

func (e *CommitError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("confirming reservation list: %v", e.Err)
	}
	return fmt.Sprintf("reserving product %s: %v", e.ProductID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
