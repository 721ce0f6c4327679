package transaction

import (
	"time"

	"github.com/mbd888/cardrisk/internal/card"
)

// Submission is a candidate transaction as supplied by a collaborator.
// OriginAddress and DeviceSignature come from the request context, not the
// end user. A zero OccurredAt means "now".
type Submission struct {
	Amount          float64   `json:"amount"`
	CardNumber      string    `json:"cardNumber"`
	MerchantName    string    `json:"merchantName"`
	Category        Category  `json:"category"`
	OccurredAt      time.Time `json:"occurredAt,omitzero"`
	OriginAddress   string    `json:"originAddress,omitempty"`
	DeviceSignature string    `json:"deviceSignature,omitempty"`
}

// validate checks a submission and returns the parsed card number.
// All field problems are collected rather than stopping at the first.
func validate(sub Submission) (card.Number, error) {
	var errs ValidationErrors

	if sub.Amount <= 0 {
		errs = append(errs, ValidationError{Field: "amount", Reason: "must be greater than zero"})
	}

	number, err := card.ParseNumber(sub.CardNumber)
	if err != nil {
		errs = append(errs, ValidationError{Field: "cardNumber", Reason: "must be exactly 16 digits"})
	}

	if sub.MerchantName == "" {
		errs = append(errs, ValidationError{Field: "merchantName", Reason: "must not be empty"})
	}

	if !ValidCategory(sub.Category) {
		errs = append(errs, ValidationError{Field: "category", Reason: "must be one of retail, entertainment, travel, food, other"})
	}

	if len(errs) > 0 {
		return card.Number{}, errs
	}
	return number, nil
}
