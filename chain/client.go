// Package chain talks to the blockchain gateway that fronts the
// UserAccounts and Operations contracts. The chain is treated as an
// unreliable collaborator: every submission may fail, and callers degrade
// to an unlinked local record when it does.
package chain

import "context"

// Confirmation is a mined submission. RecordID is the id the contract
// assigned to the record, when the operation has one.
type Confirmation struct {
	BlockHash   string `json:"block_hash"`
	BlockNumber int64  `json:"block_number"`
	TxHash      string `json:"transaction_hash"`
	RecordID    *int64 `json:"record_id"`
}

// TransferInput mirrors the contract's transaction record. Quantities are
// whole kilograms and prices are cents; see Encode* in encode.go for the
// lossy boundary from the local decimals.
type TransferInput struct {
	From       string `json:"from"`
	To         string `json:"to"`
	PaddyType  string `json:"type"`
	Kind       string `json:"kind"` // "paddy" or "rice", selects the contract function
	QuantityKg int64  `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
	Normal     bool   `json:"status"` // false for reversal records
}

type DamageInput struct {
	Party      string `json:"user_id"`
	PaddyType  string `json:"type"`
	Kind       string `json:"kind"`
	QuantityKg int64  `json:"quantity"`
	Timestamp  int64  `json:"timestamp"`
	Reason     string `json:"reason"`
}

type MillingInput struct {
	Miller         string `json:"miller_id"`
	PaddyType      string `json:"type"`
	InputKg        int64  `json:"input_paddy"`
	OutputKg       int64  `json:"output_rice"`
	Timestamp      int64  `json:"timestamp"`
	DryingDuration int    `json:"drying_duration"`
	Completed      bool   `json:"status"` // false for reversal records
}

type InitialStockInput struct {
	Party      string `json:"user_id"`
	PaddyType  string `json:"type"`
	Kind       string `json:"kind"`
	QuantityKg int64  `json:"quantity"`
	Timestamp  int64  `json:"timestamp"`
	Active     bool   `json:"status"`
}

type RegisterPartyInput struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	NIC            string `json:"nic"`
	FullName       string `json:"full_name"`
	CompanyRegNo   string `json:"company_register_number"`
	CompanyName    string `json:"company_name"`
	Address        string `json:"address"`
	District       string `json:"district"`
	ContactNumber  string `json:"contact_number"`
	TotalPaddyArea int64  `json:"total_paddy_area"`
}

// Client submits records to the chain. Calls block for the confirmation
// round-trip (bounded by the client's timeout) and are NOT idempotent:
// retrying a failed call can duplicate records on the contract, so nothing
// here retries.
type Client interface {
	RegisterParty(ctx context.Context, in RegisterPartyInput) (*Confirmation, error)
	SubmitTransfer(ctx context.Context, in TransferInput) (*Confirmation, error)
	SubmitDamage(ctx context.Context, in DamageInput) (*Confirmation, error)
	SubmitMilling(ctx context.Context, in MillingInput) (*Confirmation, error)
	SubmitInitialStock(ctx context.Context, in InitialStockInput) (*Confirmation, error)
}
