package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

type LoginInput struct {
	PartyID  string `json:"party_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (d *Deps) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var party models.Party
	if err := d.DB.First(&party, "id = ?", in.PartyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load party", err)
		return
	}
	if !party.IsActive {
		utils.Error(c, http.StatusUnauthorized, "account is inactive", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(party.PasswordHash), []byte(in.Password)); err != nil {
		utils.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token, err := utils.GenerateToken(party.ID, party.FullName, string(party.Role), 24*time.Hour)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	utils.Success(c, "login successful", gin.H{
		"token":     token,
		"party_id":  party.ID,
		"full_name": party.FullName,
		"role":      party.Role,
	})
}

func (d *Deps) Me(c *gin.Context) {
	partyID := c.GetString("party_id")

	var party models.Party
	if err := d.DB.First(&party, "id = ?", partyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, http.StatusNotFound, "party not found", nil)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to load party", err)
		return
	}
	utils.Success(c, "profile loaded", party)
}
