package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yohanvishvajith/paddyricetracker/controllers"
	"github.com/yohanvishvajith/paddyricetracker/middlewares"
)

func SetupRoutes(router *gin.Engine, d *controllers.Deps) {
	api := router.Group("/api")

	api.POST("/login", d.Login)

	auth := api.Group("")
	auth.Use(middlewares.Auth())

	auth.GET("/me", d.Me)

	auth.POST("/parties", middlewares.RequireRole("Admin"), d.CreateParty)
	auth.PUT("/parties/:id", middlewares.RequireRole("Admin"), d.UpdateParty)
	auth.GET("/parties", d.ListParties)
	auth.GET("/parties/:id", d.GetParty)
	auth.GET("/parties/:id/stocks", d.GetPartyStocks)

	auth.GET("/paddy-types", d.ListPaddyTypes)

	auth.POST("/transactions", d.CreateTransaction)
	auth.POST("/transactions/:id/revert", d.RevertTransaction)
	auth.GET("/transactions", d.ListTransactions)
	auth.GET("/transactions/:id", d.GetTransaction)

	auth.POST("/damages", d.CreateDamage)
	auth.POST("/damages/:id/revert", d.ReverseDamage)
	auth.GET("/damages", d.ListDamages)
	auth.GET("/damages/:id", d.GetDamage)

	auth.POST("/millings", d.CreateMilling)
	auth.POST("/millings/:id/revert", d.ReverseMilling)
	auth.GET("/millings", d.ListMillings)
	auth.GET("/millings/:id", d.GetMilling)

	auth.POST("/initial-stocks", d.CreateInitialStock)
	auth.POST("/initial-stocks/:id/revert", d.RevertInitialStock)
	auth.GET("/initial-stocks", d.ListInitialStocks)

	reports := auth.Group("/reports")
	reports.GET("/stock-summary", d.StockSummaryReport)
	reports.GET("/stock-by-type/:type", d.StockByTypeReport)
	reports.GET("/stock-by-party/:id", d.StockByPartyReport)
	reports.GET("/rice-distribution", d.RiceDistributionReport)
	reports.GET("/reconciliation", d.ReconciliationReport)
}
