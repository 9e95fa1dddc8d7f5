package models

// PaymentRedirect is handed to the UI so it can open the gateway page.
type PaymentRedirect struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentCompletion is the finish URL the gateway redirected back to.
type PaymentCompletion struct {
	FinishURL string `json:"finish_url" validate:"required,url"`
}

// PaymentResult is the outcome of a redirect round trip.
type PaymentResult struct {
	OrderID           string `json:"order_id"`
	Status            string `json:"status"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	Order             *Order `json:"order,omitempty"`
}
