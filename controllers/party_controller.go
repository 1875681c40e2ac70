package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

type PartyInput struct {
	FullName       string `json:"full_name" binding:"required"`
	Role           string `json:"role" binding:"required"`
	NIC            string `json:"nic"`
	CompanyRegNo   string `json:"company_register_number"`
	CompanyName    string `json:"company_name"`
	Address        string `json:"address"`
	District       string `json:"district"`
	ContactNumber  string `json:"contact_number"`
	TotalPaddyArea int64  `json:"total_paddy_area"`
	Password       string `json:"password" binding:"required,min=6"`
}

const maxIDRetries = 3

// CreateParty registers a supply-chain participant. The id is the role
// prefix plus a running number; a concurrent insert can take the same
// number, so the insert retries with a fresh one on a unique violation.
func (d *Deps) CreateParty(c *gin.Context) {
	var in PartyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid role", err)
		return
	}
	if !role.ChainRole() {
		utils.Error(c, http.StatusBadRequest, "console roles cannot be registered as parties", models.ErrUnknownRole)
		return
	}
	if role == models.RolePMB {
		var n int64
		if err := d.DB.Model(&models.Party{}).Where("role = ?", models.RolePMB).Count(&n).Error; err != nil {
			utils.Error(c, http.StatusInternalServerError, "failed to check existing parties", err)
			return
		}
		if n > 0 {
			utils.Error(c, http.StatusConflict, "the paddy marketing board is already registered", nil)
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	party := models.Party{
		FullName:       in.FullName,
		Role:           role,
		NIC:            in.NIC,
		CompanyRegNo:   in.CompanyRegNo,
		CompanyName:    in.CompanyName,
		Address:        in.Address,
		District:       in.District,
		ContactNumber:  in.ContactNumber,
		TotalPaddyArea: in.TotalPaddyArea,
		PasswordHash:   string(hash),
		IsActive:       true,
	}

	for attempt := 0; ; attempt++ {
		id, err := utils.NextPartyID(d.DB, role.Caps().IDPrefix, string(role))
		if err != nil {
			utils.Error(c, http.StatusInternalServerError, "failed to allocate party id", err)
			return
		}
		party.ID = id
		if err := d.DB.Create(&party).Error; err != nil {
			if isUniqueViolation(err) && attempt < maxIDRetries {
				continue
			}
			utils.Error(c, http.StatusInternalServerError, "failed to create party", err)
			return
		}
		break
	}

	conf, err := d.Chain.RegisterParty(c.Request.Context(), chain.RegisterPartyInput{
		ID:             party.ID,
		Role:           string(party.Role),
		NIC:            party.NIC,
		FullName:       party.FullName,
		CompanyRegNo:   party.CompanyRegNo,
		CompanyName:    party.CompanyName,
		Address:        party.Address,
		District:       party.District,
		ContactNumber:  party.ContactNumber,
		TotalPaddyArea: party.TotalPaddyArea,
	})
	if err != nil {
		chain.BestEffort(d.Log, "register party", err)
	} else if conf != nil {
		ref := models.ChainRefFrom(conf)
		if err := d.DB.Model(&party).Updates(map[string]any{
			"block_hash":      ref.BlockHash,
			"block_number":    ref.BlockNumber,
			"tx_hash":         ref.TxHash,
			"chain_record_id": ref.ChainRecordID,
		}).Error; err != nil {
			d.Log.WithError(err).WithField("party", party.ID).Warn("failed to store chain reference")
		} else {
			party.ChainRef = ref
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "party registered",
		"data":         party,
		"chain_backed": party.ChainBacked(),
	})
}

func (d *Deps) ListParties(c *gin.Context) {
	q := d.DB.Model(&models.Party{})

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if district := c.Query("district"); district != "" {
		q = q.Where("district = ?", district)
	}

	var rows []models.Party
	if err := q.Order("id").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load parties", err)
		return
	}
	utils.Success(c, "parties loaded", rows)
}

func (d *Deps) GetParty(c *gin.Context) {
	var rec models.Party
	if err := d.DB.First(&rec, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "party not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load party", err)
		return
	}
	utils.Success(c, "party loaded", rec)
}

type PartyUpdateInput struct {
	FullName       *string `json:"full_name"`
	CompanyName    *string `json:"company_name"`
	Address        *string `json:"address"`
	District       *string `json:"district"`
	ContactNumber  *string `json:"contact_number"`
	TotalPaddyArea *int64  `json:"total_paddy_area"`
	IsActive       *bool   `json:"is_active"`
}

// UpdateParty changes contact attributes only. Role and id are fixed at
// registration.
func (d *Deps) UpdateParty(c *gin.Context) {
	var in PartyUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var rec models.Party
	if err := d.DB.First(&rec, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "party not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load party", err)
		return
	}

	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.CompanyName != nil {
		updates["company_name"] = *in.CompanyName
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.District != nil {
		updates["district"] = *in.District
	}
	if in.ContactNumber != nil {
		updates["contact_number"] = *in.ContactNumber
	}
	if in.TotalPaddyArea != nil {
		updates["total_paddy_area"] = *in.TotalPaddyArea
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		utils.Error(c, http.StatusBadRequest, "nothing to update", nil)
		return
	}

	if err := d.DB.Model(&rec).Updates(updates).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to update party", err)
		return
	}
	utils.Success(c, "party updated", rec)
}

// GetPartyStocks returns the current balances of one party.
func (d *Deps) GetPartyStocks(c *gin.Context) {
	id := c.Param("id")
	if _, err := loadParty(d.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "party not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load party", err)
		return
	}

	var rows []models.Stock
	if err := d.DB.Where("party_id = ?", id).Order("kind, paddy_type").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load stocks", err)
		return
	}
	utils.Success(c, fmt.Sprintf("stocks for %s loaded", id), rows)
}
