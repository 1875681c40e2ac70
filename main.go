package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/config"
	"github.com/yohanvishvajith/paddyricetracker/controllers"
	"github.com/yohanvishvajith/paddyricetracker/middlewares"
	"github.com/yohanvishvajith/paddyricetracker/models"
	"github.com/yohanvishvajith/paddyricetracker/routes"
	"github.com/yohanvishvajith/paddyricetracker/utils"
)

func main() {
	godotenv.Load()

	log := config.GetLogger()

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		utils.Secret = []byte(secret)
	}

	config.ConnectDB()

	err := config.DB.AutoMigrate(
		&models.Party{},
		&models.PaddyType{},
		&models.Stock{},
		&models.Transaction{},
		&models.Damage{},
		&models.Milling{},
		&models.InitialStock{},
	)
	if err != nil {
		log.WithError(err).Fatal("auto migration failed")
	}

	config.SeedPaddyTypes()
	config.SeedParties()

	ch := chain.FromEnv(log)
	deps := controllers.New(config.DB, ch, log)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: false,
	}))
	router.Use(middlewares.RequestID(log))

	routes.SetupRoutes(router, deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("starting server")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
