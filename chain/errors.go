package chain

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	// ErrDisabled: no gateway configured; the backend runs database-only.
	ErrDisabled = errors.New("chain: client disabled")
	// ErrUnavailable: gateway or network failure before a receipt.
	ErrUnavailable = errors.New("chain: gateway unavailable")
	// ErrTimeout: confirmation did not arrive within the deadline. Treated
	// as failure, never as unknown-outcome, per the no-retry contract.
	ErrTimeout = errors.New("chain: confirmation timed out")
	// ErrReverted: the contract rejected the submission.
	ErrReverted = errors.New("chain: transaction reverted")
)

// BestEffort is the single policy applied to submission failures on every
// operation path: log and proceed without chain backing. It exists so the
// swallow-and-continue decision lives in one place instead of at each call
// site.
func BestEffort(log *logrus.Logger, op string, err error) {
	if err == nil {
		return
	}
	entry := log.WithFields(logrus.Fields{"module": "chain", "op": op})
	if errors.Is(err, ErrDisabled) {
		entry.Debug(err.Error())
		return
	}
	entry.Warnf("proceeding without chain backing: %v", err)
}
