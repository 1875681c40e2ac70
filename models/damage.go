package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DamageReasonRevert marks the compensating record written by a damage
// reversal. It is reserved: regular damage reports may not use it.
const DamageReasonRevert = "revert"

// Damage records destroyed or lost stock. Reverting a damage appends a new
// record with reason "revert" and flips Reverted on the original.
type Damage struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	PartyID    string          `gorm:"size:20;index;not null" json:"party_id"`
	PaddyType  string          `gorm:"size:60;index;not null" json:"paddy_type"`
	Kind       StockKind       `gorm:"size:10;not null" json:"kind"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"quantity"`
	Reason     string          `gorm:"size:255;not null" json:"reason"`
	DamageDate time.Time       `gorm:"index;not null" json:"damage_date"`
	Reverted   bool            `gorm:"not null;default:false" json:"reverted"`
	ChainRef
	CreatedAt time.Time `json:"created_at"`
}

// RestoresStock reports whether replaying this record credits the balance
// instead of debiting it.
func (d *Damage) RestoresStock() bool {
	return d.Reason == DamageReasonRevert
}
