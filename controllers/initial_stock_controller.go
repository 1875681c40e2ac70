package controllers

import (
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

type InitialStockInput struct {
	PartyID   string          `json:"party_id" binding:"required"`
	PaddyType string          `json:"type" binding:"required"`
	Kind      string          `json:"kind" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      *time.Time      `json:"date"`
}

// CreateInitialStock seeds a balance a party already held before the
// system went live. Kind is explicit in the payload: a miller can declare
// both opening paddy and opening rice.
func (d *Deps) CreateInitialStock(c *gin.Context) {
	var in InitialStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !in.Quantity.IsPositive() {
		utils.Error(c, http.StatusBadRequest, "quantity must be greater than 0", nil)
		return
	}
	kind, err := models.ParseStockKind(in.Kind)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid kind", err)
		return
	}

	dt := time.Now().UTC()
	if in.Date != nil {
		dt = in.Date.UTC()
	}
	qty := in.Quantity.Round(3)

	var rec *models.InitialStock
	err = d.DB.Transaction(func(tx *gorm.DB) error {
		party, err := loadParty(tx, in.PartyID)
		if err != nil {
			return err
		}
		if !party.Role.Caps().TracksInventory {
			return fmt.Errorf("%w: %s holds no tracked inventory", models.ErrUntrackedParty, party.ID)
		}

		if err := models.CreditStock(tx, party.ID, in.PaddyType, kind, qty); err != nil {
			return err
		}

		conf, err := d.Chain.SubmitInitialStock(c.Request.Context(), chain.InitialStockInput{
			Party:      party.ID,
			PaddyType:  in.PaddyType,
			Kind:       string(kind),
			QuantityKg: chain.EncodeQuantity(qty),
			Timestamp:  dt.Unix(),
			Active:     true,
		})
		if err != nil {
			chain.BestEffort(d.Log, "initial stock", err)
			conf = nil
		}

		rec = &models.InitialStock{
			PartyID:   party.ID,
			PaddyType: in.PaddyType,
			Kind:      kind,
			Quantity:  qty,
			Date:      dt,
			Status:    true,
			ChainRef:  models.ChainRefFrom(conf),
		}
		return d.alertDivergence("initial stock", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		utils.Error(c, httpStatusFor(err), "failed to record initial stock", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "initial stock recorded",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

// RevertInitialStock withdraws an opening balance declaration. The party
// must still hold the quantity.
func (d *Deps) RevertInitialStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var rec *models.InitialStock
	err = d.DB.Transaction(func(tx *gorm.DB) error {
		var orig models.InitialStock
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return err
		}
		if !orig.Status {
			return fmt.Errorf("initial stock %d: %w", orig.ID, models.ErrNotReversible)
		}
		if orig.Reverted {
			return fmt.Errorf("initial stock %d: %w", orig.ID, models.ErrAlreadyReverted)
		}

		if err := models.DebitStock(tx, orig.PartyID, orig.PaddyType, orig.Kind, orig.Quantity); err != nil {
			return fmt.Errorf("cannot revert: %w", err)
		}

		res := tx.Model(&models.InitialStock{}).Where("id = ?", orig.ID).Update("reverted", true)
		if res.Error != nil {
			return res.Error
		}

		conf, err := d.Chain.SubmitInitialStock(c.Request.Context(), chain.InitialStockInput{
			Party:      orig.PartyID,
			PaddyType:  orig.PaddyType,
			Kind:       string(orig.Kind),
			QuantityKg: chain.EncodeQuantity(orig.Quantity),
			Timestamp:  time.Now().Unix(),
			Active:     false,
		})
		if err != nil {
			chain.BestEffort(d.Log, "initial stock revert", err)
			conf = nil
		}

		rec = &models.InitialStock{
			PartyID:   orig.PartyID,
			PaddyType: orig.PaddyType,
			Kind:      orig.Kind,
			Quantity:  orig.Quantity,
			Date:      time.Now().UTC(),
			Status:    false,
			ChainRef:  models.ChainRefFrom(conf),
		}
		return d.alertDivergence("initial stock revert", conf,
			insertWithChainID(tx, rec, chainRecordID(conf), func(id int64) { rec.ID = id }))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "initial stock not found", nil)
			return
		}
		utils.Error(c, httpStatusFor(err), "failed to revert initial stock", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "initial stock reverted",
		"data":         rec,
		"chain_backed": rec.ChainBacked(),
	})
}

func (d *Deps) ListInitialStocks(c *gin.Context) {
	q := d.DB.Model(&models.InitialStock{})

	if party := c.Query("party"); party != "" {
		q = q.Where("party_id = ?", party)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("paddy_type = ?", t)
	}
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var rows []models.InitialStock
	if err := q.Order("date DESC, id DESC").Limit(500).Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load initial stocks", err)
		return
	}
	utils.Success(c, "initial stocks loaded", rows)
}
