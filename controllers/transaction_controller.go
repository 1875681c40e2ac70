package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

type TransactionInput struct {
	From       string          `json:"from" binding:"required"`
	To         string          `json:"to" binding:"required"`
	PaddyType  string          `json:"type" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Status     *int            `json:"status"` // 1 normal (default), 0 reversal
	OriginalID *int64          `json:"original_transaction_id"`
	Datetime   *time.Time      `json:"datetime"`
}

// transferRequest is the validated form handed to the core.
type transferRequest struct {
	From       string
	To         string
	PaddyType  string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Reversal   bool
	OriginalID *int64
	Datetime   time.Time
}

func (d *Deps) CreateTransaction(c *gin.Context) {
	var in TransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if !in.Quantity.IsPositive() {
		utils.Error(c, http.StatusBadRequest, "quantity must be greater than 0", nil)
		return
	}
	if in.Price.IsNegative() {
		utils.Error(c, http.StatusBadRequest, "price must not be negative", nil)
		return
	}

	reversal := in.Status != nil && *in.Status == models.TxStatusReversal
	if reversal && in.OriginalID == nil {
		utils.Error(c, http.StatusBadRequest, "original_transaction_id is required for a reversal", nil)
		return
	}

	dt := time.Now().UTC()
	if in.Datetime != nil {
		dt = in.Datetime.UTC()
	}

	rec, err := d.transferCore(c.Request.Context(), transferRequest{
		From:       in.From,
		To:         in.To,
		PaddyType:  in.PaddyType,
		Quantity:   in.Quantity.Round(3),
		Price:      in.Price.Round(2),
		Reversal:   reversal,
		OriginalID: in.OriginalID,
		Datetime:   dt,
	})
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to record transaction", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "transaction recorded",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

// transferCore moves quantity between two parties. The whole operation is
// one database transaction: sender lock and check, recipient adjustment,
// best-effort chain submission (row locks are held for the confirmation
// round-trip), record insert, and the reversal flag on the original. A
// chain failure never aborts; any local failure rolls everything back.
//
// A reversal keeps the original record's direction: the sender is credited
// back and the recipient debited, exactly undoing the original transfer.
func (d *Deps) transferCore(ctx context.Context, in transferRequest) (*models.Transaction, error) {
	var rec *models.Transaction

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		sender, err := loadParty(tx, in.From)
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		recipient, err := loadParty(tx, in.To)
		if err != nil {
			return fmt.Errorf("recipient: %w", err)
		}
		if !sender.Role.ChainRole() || !recipient.Role.ChainRole() {
			return fmt.Errorf("%w: console accounts cannot trade", models.ErrUnknownRole)
		}

		// commodity class follows the sender's role
		kind := sender.Role.Caps().Class

		// sender side first, recipient second: the fixed lock order that
		// keeps mirror-image transfers from deadlocking
		if sender.Role.Caps().TracksInventory {
			row, err := models.LockStock(tx, sender.ID, in.PaddyType, kind)
			if err != nil {
				return err
			}
			if in.Reversal {
				// a reversal always succeeds at the sender side
				if row == nil {
					if _, err := models.CreateStock(tx, sender.ID, in.PaddyType, kind, in.Quantity); err != nil {
						return err
					}
				} else if err := row.Adjust(tx, in.Quantity); err != nil {
					return err
				}
			} else {
				if row == nil {
					return fmt.Errorf("%w: sender %s has no %s stock for type %q",
						models.ErrInsufficientStock, sender.ID, kind, in.PaddyType)
				}
				if err := row.Adjust(tx, in.Quantity.Neg()); err != nil {
					return err
				}
			}
		}

		if recipient.Role.Caps().TracksInventory {
			if in.Reversal {
				// the recipient must still hold what is being taken back
				if err := models.DebitStock(tx, recipient.ID, in.PaddyType, kind, in.Quantity); err != nil {
					return fmt.Errorf("cannot revert: %w", err)
				}
			} else {
				if err := models.CreditStock(tx, recipient.ID, in.PaddyType, kind, in.Quantity); err != nil {
					return err
				}
			}
		}

		conf, err := d.Chain.SubmitTransfer(ctx, chain.TransferInput{
			From:       sender.ID,
			To:         recipient.ID,
			PaddyType:  in.PaddyType,
			Kind:       string(kind),
			QuantityKg: chain.EncodeQuantity(in.Quantity),
			PriceCents: chain.EncodePrice(in.Price),
			Normal:     !in.Reversal,
		})
		if err != nil {
			chain.BestEffort(d.Log, "transfer", err)
			conf = nil
		}

		status := models.TxStatusNormal
		if in.Reversal {
			status = models.TxStatusReversal
		}
		rec = &models.Transaction{
			FromID:    sender.ID,
			ToID:      recipient.ID,
			PaddyType: in.PaddyType,
			Kind:      kind,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Status:    status,
			Datetime:  in.Datetime,
			ChainRef:  models.ChainRefFrom(conf),
		}
		if err := insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }); err != nil {
			return d.alertDivergence("transfer", conf, err)
		}

		if in.Reversal && in.OriginalID != nil {
			res := tx.Model(&models.Transaction{}).
				Where("id = ?", *in.OriginalID).
				Update("is_reverted", true)
			if res.Error != nil {
				return d.alertDivergence("transfer", conf, res.Error)
			}
			if res.RowsAffected == 0 {
				return d.alertDivergence("transfer", conf,
					fmt.Errorf("original transaction %d: %w", *in.OriginalID, gorm.ErrRecordNotFound))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RevertTransaction undoes a recorded transfer: a compensating record in
// the original's direction plus the is_reverted flag on the original.
func (d *Deps) RevertTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var orig models.Transaction
	if err := d.DB.First(&orig, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "transaction not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load transaction", err)
		return
	}
	if orig.Reversal() {
		utils.Error(c, http.StatusBadRequest, "cannot revert a reversal record", models.ErrNotReversible)
		return
	}
	if orig.IsReverted {
		utils.Error(c, http.StatusBadRequest, "transaction already reverted", models.ErrAlreadyReverted)
		return
	}

	rec, err := d.transferCore(c.Request.Context(), transferRequest{
		From:       orig.FromID,
		To:         orig.ToID,
		PaddyType:  orig.PaddyType,
		Quantity:   orig.Quantity,
		Price:      orig.Price,
		Reversal:   true,
		OriginalID: &orig.ID,
		Datetime:   time.Now().UTC(),
	})
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to revert transaction", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "transaction reverted",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

func (d *Deps) ListTransactions(c *gin.Context) {
	q := d.DB.Model(&models.Transaction{})

	if party := c.Query("party"); party != "" {
		q = q.Where("from_id = ? OR to_id = ?", party, party)
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("from_id = ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("to_id = ?", to)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("paddy_type = ?", t)
	}
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if fromDate := c.Query("from_date"); fromDate != "" {
		q = q.Where("datetime >= ?", fromDate)
	}
	if toDate := c.Query("to_date"); toDate != "" {
		q = q.Where("datetime <= ?", toDate)
	}

	var rows []models.Transaction
	if err := q.Order("datetime DESC, id DESC").Limit(500).Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load transactions", err)
		return
	}
	utils.Success(c, "transactions loaded", rows)
}

func (d *Deps) GetTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var rec models.Transaction
	if err := d.DB.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "transaction not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load transaction", err)
		return
	}
	utils.Success(c, "transaction loaded", rec)
}

func loadParty(tx *gorm.DB, id string) (*models.Party, error) {
	var p models.Party
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("party %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, err
	}
	return &p, nil
}
