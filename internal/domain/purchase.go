package domain

import "time"

// Purchase records a confirmed payment for a listing
type Purchase struct {
	Listing         Listing   `json:"listing"`
	PurchaseDate    time.Time `json:"purchaseDate"`
	TransactionHash string    `json:"transactionHash"`
	BuyerAddress    string    `json:"buyerAddress"`
}
