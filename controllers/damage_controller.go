package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

type DamageInput struct {
	PartyID    string          `json:"party_id" binding:"required"`
	PaddyType  string          `json:"type" binding:"required"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason" binding:"required"`
	DamageDate *time.Time      `json:"damage_date"`
}

func (d *Deps) CreateDamage(c *gin.Context) {
	var in DamageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !in.Quantity.IsPositive() {
		utils.Error(c, http.StatusBadRequest, "quantity must be greater than 0", nil)
		return
	}
	if strings.EqualFold(strings.TrimSpace(in.Reason), models.DamageReasonRevert) {
		utils.Error(c, http.StatusBadRequest, "use the revert endpoint to undo a damage record", nil)
		return
	}

	dt := time.Now().UTC()
	if in.DamageDate != nil {
		dt = in.DamageDate.UTC()
	}

	rec, err := d.damageCore(c.Request.Context(), in.PartyID, in.PaddyType, in.Kind, in.Quantity.Round(3), in.Reason, dt)
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to record damage", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "damage recorded",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

// damageCore writes stock off a party's balance. Same shape as a transfer
// with no recipient: lock, check, debit, best-effort chain submit, insert.
func (d *Deps) damageCore(ctx context.Context, partyID, paddyType, kindOverride string, qty decimal.Decimal, reason string, dt time.Time) (*models.Damage, error) {
	var rec *models.Damage

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		party, err := loadParty(tx, partyID)
		if err != nil {
			return err
		}
		caps := party.Role.Caps()
		if !caps.TracksInventory {
			return fmt.Errorf("%w: %s holds no tracked inventory", models.ErrUntrackedParty, party.ID)
		}

		kind := caps.Class
		if kindOverride != "" {
			kind, err = models.ParseStockKind(kindOverride)
			if err != nil {
				return err
			}
		}

		if err := models.DebitStock(tx, party.ID, paddyType, kind, qty); err != nil {
			return err
		}

		conf, err := d.Chain.SubmitDamage(ctx, chain.DamageInput{
			Party:      party.ID,
			PaddyType:  paddyType,
			Kind:       string(kind),
			QuantityKg: chain.EncodeQuantity(qty),
			Timestamp:  dt.Unix(),
			Reason:     reason,
		})
		if err != nil {
			chain.BestEffort(d.Log, "damage", err)
			conf = nil
		}

		rec = &models.Damage{
			PartyID:    party.ID,
			PaddyType:  paddyType,
			Kind:       kind,
			Quantity:   qty,
			Reason:     reason,
			DamageDate: dt,
			ChainRef:   models.ChainRefFrom(conf),
		}
		return d.alertDivergence("damage", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReverseDamage credits the written-off quantity back and marks the
// original record reverted. The compensating record carries the reserved
// "revert" reason so the chain contract restores instead of deducting.
func (d *Deps) ReverseDamage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	rec, err := d.reverseDamageCore(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to revert damage", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "damage reverted",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

func (d *Deps) reverseDamageCore(ctx context.Context, id int64) (*models.Damage, error) {
	var rec *models.Damage

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		var orig models.Damage
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return err
		}
		if orig.RestoresStock() {
			return fmt.Errorf("damage %d: %w", orig.ID, models.ErrNotReversible)
		}
		if orig.Reverted {
			return fmt.Errorf("damage %d: %w", orig.ID, models.ErrAlreadyReverted)
		}

		if err := models.CreditStock(tx, orig.PartyID, orig.PaddyType, orig.Kind, orig.Quantity); err != nil {
			return err
		}

		res := tx.Model(&models.Damage{}).Where("id = ?", orig.ID).Update("reverted", true)
		if res.Error != nil {
			return res.Error
		}

		conf, err := d.Chain.SubmitDamage(ctx, chain.DamageInput{
			Party:      orig.PartyID,
			PaddyType:  orig.PaddyType,
			Kind:       string(orig.Kind),
			QuantityKg: chain.EncodeQuantity(orig.Quantity),
			Timestamp:  time.Now().Unix(),
			Reason:     models.DamageReasonRevert,
		})
		if err != nil {
			chain.BestEffort(d.Log, "damage revert", err)
			conf = nil
		}

		rec = &models.Damage{
			PartyID:    orig.PartyID,
			PaddyType:  orig.PaddyType,
			Kind:       orig.Kind,
			Quantity:   orig.Quantity,
			Reason:     models.DamageReasonRevert,
			DamageDate: time.Now().UTC(),
			ChainRef:   models.ChainRefFrom(conf),
		}
		return d.alertDivergence("damage revert", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Deps) ListDamages(c *gin.Context) {
	q := d.DB.Model(&models.Damage{})

	if party := c.Query("party"); party != "" {
		q = q.Where("party_id = ?", party)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("paddy_type = ?", t)
	}
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if fromDate := c.Query("from_date"); fromDate != "" {
		q = q.Where("damage_date >= ?", fromDate)
	}
	if toDate := c.Query("to_date"); toDate != "" {
		q = q.Where("damage_date <= ?", toDate)
	}

	var rows []models.Damage
	if err := q.Order("damage_date DESC, id DESC").Limit(500).Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load damages", err)
		return
	}
	utils.Success(c, "damages loaded", rows)
}

func (d *Deps) GetDamage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var rec models.Damage
	if err := d.DB.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "damage not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load damage", err)
		return
	}
	utils.Success(c, "damage loaded", rec)
}
