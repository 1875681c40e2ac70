package models

import "github.com/yohanvishvajith/paddyricetracker/chain"

// ChainRef is the optional blockchain confirmation attached to a local
// record. All fields are null when the chain was unreachable at write time;
// such records stay permanently unlinked (no backfill).
type ChainRef struct {
	BlockHash   *string `gorm:"size:80" json:"block_hash"`
	BlockNumber *int64  `json:"block_number"`
	TxHash      *string `gorm:"size:80" json:"transaction_hash"`
	// ChainRecordID is the id the contract assigned. It is usually also
	// adopted as the local primary key, but is kept here as well so
	// reconciliation can spot rows where the two diverged.
	ChainRecordID *int64 `json:"chain_record_id"`
}

// ChainBacked reports whether the record made it onto the chain.
func (r ChainRef) ChainBacked() bool {
	return r.TxHash != nil
}

// ChainRefFrom builds a ChainRef from a confirmation; a nil confirmation
// (failed or disabled chain) yields the all-null ref.
func ChainRefFrom(conf *chain.Confirmation) ChainRef {
	if conf == nil {
		return ChainRef{}
	}
	hash := conf.BlockHash
	num := conf.BlockNumber
	tx := conf.TxHash
	return ChainRef{
		BlockHash:     &hash,
		BlockNumber:   &num,
		TxHash:        &tx,
		ChainRecordID: conf.RecordID,
	}
}
