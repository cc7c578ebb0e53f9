package domain

import "time"

// Offer is a time-bounded percentage discount.
type Offer struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	DiscountPercentage int       `json:"discountPercentage"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	IsActive           bool      `json:"isActive"`
}

// ActiveAt reports whether the offer is switched on and t is inside its window.
func (o Offer) ActiveAt(t time.Time) bool {
	return o.IsActive && !t.Before(o.StartDate) && !t.After(o.EndDate)
}

// OfferInput is the admin's offer creation form.
type OfferInput struct {
	Title              string    `json:"title"              validate:"required"`
	DiscountPercentage int       `json:"discountPercentage" validate:"required,gte=1,lte=100"`
	StartDate          time.Time `json:"startDate"          validate:"required"`
	EndDate            time.Time `json:"endDate"            validate:"required,gtefield=StartDate"`
	IsActive           bool      `json:"isActive"`
}
