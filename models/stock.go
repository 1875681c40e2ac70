package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockKind separates the two commodity classes a party can hold: paddy
// (raw) and rice (milled output).
type StockKind string

const (
	KindPaddy StockKind = "paddy"
	KindRice  StockKind = "rice"
)

func ParseStockKind(s string) (StockKind, error) {
	switch StockKind(s) {
	case KindPaddy, KindRice:
		return StockKind(s), nil
	}
	return "", fmt.Errorf("invalid stock kind: %q", s)
}

// Stock is the running balance per (party, paddy type, class). A row may
// not exist until the first credit; absence reads as zero. Quantities are
// kilograms with 3 decimal places and never go negative.
type Stock struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PartyID   string          `gorm:"size:20;not null;uniqueIndex:idx_stock_party_type_kind" json:"party_id"`
	PaddyType string          `gorm:"size:60;not null;uniqueIndex:idx_stock_party_type_kind" json:"paddy_type"`
	Kind      StockKind       `gorm:"size:10;not null;uniqueIndex:idx_stock_party_type_kind" json:"kind"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,3);not null;default:0" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// lockForUpdate adds SELECT ... FOR UPDATE on postgres. sqlite (tests) has
// a single writer per database, which already serializes the protocol.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// GetStockBalance returns the current balance, zero when no row exists.
func GetStockBalance(db *gorm.DB, partyID, paddyType string, kind StockKind) (decimal.Decimal, error) {
	var row Stock
	err := db.Where("party_id = ? AND paddy_type = ? AND kind = ?", partyID, paddyType, kind).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.Quantity, nil
}

// LockStock locks the balance row for the rest of the enclosing
// transaction and returns it, or (nil, nil) when no row exists yet.
func LockStock(tx *gorm.DB, partyID, paddyType string, kind StockKind) (*Stock, error) {
	var row Stock
	err := lockForUpdate(tx).
		Where("party_id = ? AND paddy_type = ? AND kind = ?", partyID, paddyType, kind).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Adjust applies delta to a locked row. A delta that would take the
// balance below zero fails with ErrInsufficientStock and leaves the row
// untouched.
func (s *Stock) Adjust(tx *gorm.DB, delta decimal.Decimal) error {
	next := s.Quantity.Add(delta)
	if next.IsNegative() {
		return fmt.Errorf("%w: party %s has %s kg of %s %s, need %s kg",
			ErrInsufficientStock, s.PartyID, s.Quantity, s.PaddyType, s.Kind, delta.Neg())
	}
	if err := tx.Model(s).Update("quantity", next).Error; err != nil {
		return err
	}
	s.Quantity = next
	return nil
}

// CreateStock inserts a fresh balance row seeded at qty.
func CreateStock(tx *gorm.DB, partyID, paddyType string, kind StockKind, qty decimal.Decimal) (*Stock, error) {
	row := Stock{PartyID: partyID, PaddyType: paddyType, Kind: kind, Quantity: qty}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreditStock adds qty to the balance, creating the row on first credit.
// Callers must already be inside the operation's transaction.
func CreditStock(tx *gorm.DB, partyID, paddyType string, kind StockKind, qty decimal.Decimal) error {
	row, err := LockStock(tx, partyID, paddyType, kind)
	if err != nil {
		return err
	}
	if row == nil {
		_, err = CreateStock(tx, partyID, paddyType, kind, qty)
		return err
	}
	return row.Adjust(tx, qty)
}

// DebitStock removes qty from the balance; fails with ErrInsufficientStock
// when the row is missing or too small.
func DebitStock(tx *gorm.DB, partyID, paddyType string, kind StockKind, qty decimal.Decimal) error {
	row, err := LockStock(tx, partyID, paddyType, kind)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: party %s has no %s stock for type %q",
			ErrInsufficientStock, partyID, kind, paddyType)
	}
	return row.Adjust(tx, qty.Neg())
}
