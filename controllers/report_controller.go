package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohanvishvajith/paddyricetracker/utils"
)

func (d *Deps) StockSummaryReport(c *gin.Context) {
	rows, err := d.Reports.StockSummary()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to build stock summary", err)
		return
	}
	utils.Success(c, "stock summary", rows)
}

func (d *Deps) StockByTypeReport(c *gin.Context) {
	t := c.Param("type")
	rows, err := d.Reports.StockByType(t)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to build stock report", err)
		return
	}
	utils.Success(c, "stock by type", rows)
}

func (d *Deps) StockByPartyReport(c *gin.Context) {
	rows, err := d.Reports.StockByParty(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to build stock report", err)
		return
	}
	utils.Success(c, "stock by party", rows)
}

func (d *Deps) RiceDistributionReport(c *gin.Context) {
	rows, err := d.Reports.RiceDistribution()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to build distribution report", err)
		return
	}
	utils.Success(c, "rice distribution by district", rows)
}

// ReconciliationReport lists records that never made it onto the chain.
func (d *Deps) ReconciliationReport(c *gin.Context) {
	rep, err := d.Reports.UnlinkedRecords()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to build reconciliation report", err)
		return
	}
	utils.Success(c, "reconciliation report", rep)
}
