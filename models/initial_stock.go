package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialStock is an opening-balance entry credited when a tracked party is
// onboarded with stock already on hand. Reverting one appends a Status=false
// entry and debits the balance; the original is marked Reverted.
type InitialStock struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	PartyID   string          `gorm:"size:20;index;not null" json:"party_id"`
	PaddyType string          `gorm:"size:60;index;not null" json:"paddy_type"`
	Kind      StockKind       `gorm:"size:10;not null" json:"kind"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"quantity"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Status    bool            `gorm:"not null" json:"status"` // true active, false reversal entry
	Reverted  bool            `gorm:"not null;default:false" json:"reverted"`
	ChainRef
	CreatedAt time.Time `json:"created_at"`
}
