package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/service"
)

// Deps carries the process-wide collaborators, built once in main. The
// chain client is injected here instead of living as a package global so a
// fake can be swapped in for tests.
type Deps struct {
	DB      *gorm.DB
	Chain   chain.Client
	Log     *logrus.Logger
	Reports service.Service
}

func New(db *gorm.DB, ch chain.Client, log *logrus.Logger) *Deps {
	return &Deps{DB: db, Chain: ch, Log: log, Reports: service.NewService(db)}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (tests) has no pgconn error type
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// insertWithChainID adopts the chain-assigned record id as the local
// primary key when the chain call produced one. If that id is already
// taken locally, the insert falls back to a locally assigned id; the two
// ledgers then stay linked through chain_record_id only.
func insertWithChainID(tx *gorm.DB, rec any, chainID *int64, setID func(int64)) error {
	if chainID != nil {
		setID(*chainID)
		if err := tx.SavePoint("chain_id").Error; err != nil {
			return err
		}
		err := tx.Create(rec).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		if err := tx.RollbackTo("chain_id").Error; err != nil {
			return err
		}
		setID(0)
	}
	return tx.Create(rec).Error
}

// alertDivergence logs the one failure mode that leaves the two ledgers
// permanently inconsistent: the chain accepted the record but the local
// write failed and rolled back. The chain side cannot be rolled back, so
// this must reach operators rather than drown in generic 500 logs.
func (d *Deps) alertDivergence(op string, conf *chain.Confirmation, err error) error {
	if err != nil && conf != nil {
		d.Log.WithFields(logrus.Fields{
			"op":        op,
			"tx_hash":   conf.TxHash,
			"block":     conf.BlockNumber,
			"record_id": conf.RecordID,
		}).Error("chain confirmed but local write failed, ledgers have diverged")
	}
	return err
}

func chainRecordID(conf *chain.Confirmation) *int64 {
	if conf == nil {
		return nil
	}
	return conf.RecordID
}

// httpStatusFor separates client errors (rejected, no side effects) from
// infrastructure errors.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidMillingRatio),
		errors.Is(err, models.ErrUntrackedParty),
		errors.Is(err, models.ErrAlreadyReverted),
		errors.Is(err, models.ErrNotReversible),
		errors.Is(err, models.ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
