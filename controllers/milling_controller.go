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

type MillingInput struct {
	MillerID       string          `json:"miller_id" binding:"required"`
	PaddyType      string          `json:"type" binding:"required"`
	InputPaddy     decimal.Decimal `json:"input_paddy"`
	OutputRice     decimal.Decimal `json:"output_rice"`
	MillingDate    *time.Time      `json:"milling_date"`
	DryingDuration int             `json:"drying_duration"`
}

func (d *Deps) CreateMilling(c *gin.Context) {
	var in MillingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !in.InputPaddy.IsPositive() || !in.OutputRice.IsPositive() {
		utils.Error(c, http.StatusBadRequest, "input and output must be greater than 0", nil)
		return
	}
	// mass cannot be created: checked before any balance is touched
	if in.OutputRice.GreaterThan(in.InputPaddy) {
		utils.Error(c, http.StatusBadRequest, "output rice cannot exceed input paddy", models.ErrInvalidMillingRatio)
		return
	}

	dt := time.Now().UTC()
	if in.MillingDate != nil {
		dt = in.MillingDate.UTC()
	}

	rec, err := d.millCore(c.Request.Context(), in.MillerID, in.PaddyType,
		in.InputPaddy.Round(3), in.OutputRice.Round(3), dt, in.DryingDuration)
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to record milling", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "milling recorded",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

// millCore converts paddy into rice on a miller's own balances: the paddy
// row is locked and debited, the rice row credited, all in one database
// transaction around the best-effort chain submission.
func (d *Deps) millCore(ctx context.Context, millerID, paddyType string, input, output decimal.Decimal, dt time.Time, drying int) (*models.Milling, error) {
	var rec *models.Milling

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		party, err := loadParty(tx, millerID)
		if err != nil {
			return err
		}
		if party.Role != models.RoleMiller {
			return fmt.Errorf("%w: %s is not a miller", models.ErrUnknownRole, party.ID)
		}

		// paddy before rice: fixed lock order shared with reversals
		row, err := models.LockStock(tx, party.ID, paddyType, models.KindPaddy)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("%w: miller %s has no paddy stock for type %q",
				models.ErrInsufficientStock, party.ID, paddyType)
		}
		if err := row.Adjust(tx, input.Neg()); err != nil {
			return err
		}
		if err := models.CreditStock(tx, party.ID, paddyType, models.KindRice, output); err != nil {
			return err
		}

		conf, err := d.Chain.SubmitMilling(ctx, chain.MillingInput{
			Miller:         party.ID,
			PaddyType:      paddyType,
			InputKg:        chain.EncodeQuantity(input),
			OutputKg:       chain.EncodeQuantity(output),
			Timestamp:      dt.Unix(),
			DryingDuration: drying,
			Completed:      true,
		})
		if err != nil {
			chain.BestEffort(d.Log, "milling", err)
			conf = nil
		}

		rec = &models.Milling{
			MillerID:       party.ID,
			PaddyType:      paddyType,
			InputPaddy:     input,
			OutputRice:     output,
			MillingDate:    dt,
			DryingDuration: drying,
			Status:         models.MillingCompleted,
			ChainRef:       models.ChainRefFrom(conf),
		}
		return d.alertDivergence("milling", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReverseMilling undoes a completed run: paddy is credited back and the
// produced rice taken away. The miller must still hold the rice.
func (d *Deps) ReverseMilling(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var rec *models.Milling
	err = d.DB.Transaction(func(tx *gorm.DB) error {
		var orig models.Milling
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return err
		}
		if orig.Status != models.MillingCompleted {
			return fmt.Errorf("milling %d: %w", orig.ID, models.ErrNotReversible)
		}
		if orig.Reverted {
			return fmt.Errorf("milling %d: %w", orig.ID, models.ErrAlreadyReverted)
		}

		if err := models.CreditStock(tx, orig.MillerID, orig.PaddyType, models.KindPaddy, orig.InputPaddy); err != nil {
			return err
		}
		if err := models.DebitStock(tx, orig.MillerID, orig.PaddyType, models.KindRice, orig.OutputRice); err != nil {
			return fmt.Errorf("cannot revert: %w", err)
		}

		res := tx.Model(&models.Milling{}).Where("id = ?", orig.ID).Update("reverted", true)
		if res.Error != nil {
			return res.Error
		}

		conf, err := d.Chain.SubmitMilling(c.Request.Context(), chain.MillingInput{
			Miller:         orig.MillerID,
			PaddyType:      orig.PaddyType,
			InputKg:        chain.EncodeQuantity(orig.InputPaddy),
			OutputKg:       chain.EncodeQuantity(orig.OutputRice),
			Timestamp:      time.Now().Unix(),
			DryingDuration: orig.DryingDuration,
			Completed:      false,
		})
		if err != nil {
			chain.BestEffort(d.Log, "milling revert", err)
			conf = nil
		}

		rec = &models.Milling{
			MillerID:       orig.MillerID,
			PaddyType:      orig.PaddyType,
			InputPaddy:     orig.InputPaddy,
			OutputRice:     orig.OutputRice,
			MillingDate:    time.Now().UTC(),
			DryingDuration: orig.DryingDuration,
			Status:         models.MillingReverted,
			ChainRef:       models.ChainRefFrom(conf),
		}
		return d.alertDivergence("milling revert", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "milling not found", nil)
			return
		}
		utils.Error(c, httpStatusFor(err), "failed to revert milling", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "milling reverted",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

func (d *Deps) ListMillings(c *gin.Context) {
	q := d.DB.Model(&models.Milling{})

	if miller := c.Query("miller"); miller != "" {
		q = q.Where("miller_id = ?", miller)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("paddy_type = ?", t)
	}
	if fromDate := c.Query("from_date"); fromDate != "" {
		q = q.Where("milling_date >= ?", fromDate)
	}
	if toDate := c.Query("to_date"); toDate != "" {
		q = q.Where("milling_date <= ?", toDate)
	}

	var rows []models.Milling
	if err := q.Order("milling_date DESC, id DESC").Limit(500).Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load millings", err)
		return
	}
	utils.Success(c, "millings loaded", rows)
}

func (d *Deps) GetMilling(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var rec models.Milling
	if err := d.DB.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "milling not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load milling", err)
		return
	}
	utils.Success(c, "milling loaded", rec)
}
