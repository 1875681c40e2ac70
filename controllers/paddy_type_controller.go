package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

func (d *Deps) ListPaddyTypes(c *gin.Context) {
	var rows []models.PaddyType
	if err := d.DB.Order("name").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load paddy types", err)
		return
	}
	utils.Success(c, "paddy types loaded", rows)
}
