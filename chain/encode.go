package chain

import "github.com/shopspring/decimal"

// The contracts only take integers. The local decimal values stay
// authoritative; these encodings are the deliberate lossy boundary.

// EncodeQuantity truncates a kilogram quantity to whole kg.
func EncodeQuantity(q decimal.Decimal) int64 {
	return q.IntPart()
}

// EncodePrice converts a 2-decimal unit price to cents, rounding to the
// nearest cent.
func EncodePrice(p decimal.Decimal) int64 {
	return p.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
