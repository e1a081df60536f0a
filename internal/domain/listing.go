package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingPrice is the fixed price of every listing created through submission
var ListingPrice = decimal.RequireFromString("0.03")

// Listing represents a piece of code offered for sale
type Listing struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Author       string          `json:"author"`
	Rating       float64         `json:"rating"`
	Sales        int             `json:"sales"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	CodePreview  string          `json:"codePreview"`
	PreviewImage string          `json:"previewImage"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no slices with l
func (l Listing) Clone() Listing {
	c := l
	if l.Tags != nil {
		c.Tags = append([]string(nil), l.Tags...)
	}
	return c
}
