package chain

import "context"

// Disabled is the Client used when no gateway is configured. Every
// submission fails with ErrDisabled, which the BestEffort policy downgrades
// to a debug log.
type Disabled struct{}

func (Disabled) RegisterParty(context.Context, RegisterPartyInput) (*Confirmation, error) {
	return nil, ErrDisabled
}

func (Disabled) SubmitTransfer(context.Context, TransferInput) (*Confirmation, error) {
	return nil, ErrDisabled
}

func (Disabled) SubmitDamage(context.Context, DamageInput) (*Confirmation, error) {
	return nil, ErrDisabled
}

func (Disabled) SubmitMilling(context.Context, MillingInput) (*Confirmation, error) {
	return nil, ErrDisabled
}

func (Disabled) SubmitInitialStock(context.Context, InitialStockInput) (*Confirmation, error) {
	return nil, ErrDisabled
}
