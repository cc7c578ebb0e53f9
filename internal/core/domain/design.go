package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DesignStatus is the review status of a custom design.
type DesignStatus string

const (
	DesignPending      DesignStatus = "Pending"
	DesignReviewed     DesignStatus = "Reviewed"
	DesignInProduction DesignStatus = "InProduction"
	DesignCompleted    DesignStatus = "Completed"
	DesignRejected     DesignStatus = "Rejected"
)

// DesignStatuses lists every design status in review order.
var DesignStatuses = []DesignStatus{DesignPending, DesignReviewed, DesignInProduction, DesignCompleted, DesignRejected}

// Valid reports whether s belongs to the design status enumeration.
func (s DesignStatus) Valid() bool {
	for _, known := range DesignStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Deletable reports whether the owner may still withdraw the design.
func (s DesignStatus) Deletable() bool {
	return s == DesignPending || s == DesignRejected
}

// CustomDesign is a user-submitted print design.
type CustomDesign struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"userId"`
	ImageURL  string       `json:"imageUrl"`
	Note      string       `json:"note"`
	PrintSize string       `json:"printSize"`
	Quantity  int          `json:"quantity"`
	Status    DesignStatus `json:"status"`
	AdminNote string       `json:"adminNote,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// DesignUpload is a design submission.
type DesignUpload struct {
	FileName  string `validate:"required"`
	Content   []byte `validate:"required"`
	Note      string
	PrintSize string
	Quantity  int `validate:"gte=1"`
}

var designTitle = regexp.MustCompile(`Title:\s*(.*?)\s*\|`)

// ProductDraft converts a design into a product form prefilled for the admin.
func (d CustomDesign) ProductDraft() ProductInput {
	title := fmt.Sprintf("Custom Design #%d", d.UserID)
	if strings.Contains(d.Note, "Title:") {
		if m := designTitle.FindStringSubmatch(d.Note); m != nil {
			title = m[1]
		}
	}
	printSize := d.PrintSize
	if printSize == "" {
		printSize = "N/A"
	}
	discount := decimal.NewFromInt(799)
	return ProductInput{
		Name:          title,
		Brand:         "PULSEPR",
		Description:   fmt.Sprintf("Converted from Custom Design.\nPrint Size: %s\nUser Note: %s", printSize, d.Note),
		Category:      CategoryGraphicTee,
		Price:         decimal.NewFromInt(999),
		DiscountPrice: &discount,
		Images:        []string{d.ImageURL},
		IsActive:      true,
	}
}
