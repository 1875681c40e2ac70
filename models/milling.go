package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MillingCompleted = 1
	MillingReverted  = 0
)

// Milling records one conversion event at a miller: paddy consumed, rice
// produced. A reversal is a second record with Status 0 that undoes the
// balance effect; the original keeps its status and is only marked Reverted.
type Milling struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	MillerID       string          `gorm:"size:20;index;not null" json:"miller_id"`
	PaddyType      string          `gorm:"size:60;index;not null" json:"paddy_type"`
	InputPaddy     decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"input_paddy"`
	OutputRice     decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"output_rice"`
	MillingDate    time.Time       `gorm:"index;not null" json:"milling_date"`
	DryingDuration int             `gorm:"not null;default:0" json:"drying_duration"` // hours
	Status         int             `gorm:"not null" json:"status"`                    // 1 completed, 0 reversal
	Reverted       bool            `gorm:"not null;default:false" json:"reverted"`
	ChainRef
	CreatedAt time.Time `json:"created_at"`
}
