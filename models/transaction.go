package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxStatusNormal   = 1
	TxStatusReversal = 0
)

// Transaction is one transfer of paddy or rice between two parties.
// Rows are append-only: the only mutation ever applied is flipping
// IsReverted on the original when a reversal referencing it is recorded.
// The id matches the chain-assigned record id when the chain call
// succeeded, otherwise it is locally auto-assigned.
type Transaction struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	FromID     string          `gorm:"column:from_id;size:20;index;not null" json:"from"`
	ToID       string          `gorm:"column:to_id;size:20;index;not null" json:"to"`
	PaddyType  string          `gorm:"size:60;index;not null" json:"paddy_type"`
	Kind       StockKind       `gorm:"size:10;not null" json:"kind"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // per-kg unit price
	Status     int             `gorm:"not null" json:"status"`                             // 1 normal, 0 reversal
	IsReverted bool            `gorm:"not null;default:false" json:"is_reverted"`
	Datetime   time.Time       `gorm:"index;not null" json:"datetime"`
	ChainRef
	CreatedAt time.Time `json:"created_at"`
}

func (t *Transaction) Reversal() bool {
	return t.Status == TxStatusReversal
}
