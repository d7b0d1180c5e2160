package main

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"reservations-service/compliance"
	"reservations-service/config"
	"reservations-service/database"
	"reservations-service/handlers"
	"reservations-service/middleware"
	"reservations-service/models"
	"reservations-service/portfolio"
	"reservations-service/provider"
	"reservations-service/reconcile"
	"reservations-service/repository"
	"reservations-service/statement"
	"reservations-service/version"
)

const (
	EndPointHealth              = "/health"
	EndPointGetReservations     = "/reservations"
	EndPointComputeStatement    = "/statement"
	EndPointValidateCompliance  = "/compliance/validate"
	EndPointSendCompliance      = "/compliance/send"
	EndPointComplianceDashboard = "/compliance/dashboard"
	EndPointPortfolioOverview   = "/portfolio/overview"
	EndPointPortfolioTrends     = "/portfolio/trends"
	EndPointGetCalendar         = "/calendar"
	EndPointUpdateCalendar      = "/calendar/update"
	EndPointRegisterProperty    = "/properties"
)

func main() {
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	log.Info("Starting the reservations service...")

	// Upstream providers
	primary := provider.NewHTTPClient("primary", cfg.PrimaryProviderURL, cfg.PrimaryProviderKey)
	secondary := provider.NewHTTPClient("secondary", cfg.SecondaryProviderURL, cfg.SecondaryProviderKey)

	reconciler := reconcile.New(primary, secondary)

	// Submission records: MySQL when reachable, in-memory otherwise. The
	// engine only sees the RecordStore interface either way.
	var store compliance.RecordStore
	db, err := database.Connect(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err == nil {
		err = database.InitSchema(db)
	}
	if err != nil {
		log.Warnf("Database unavailable, falling back to in-memory submission store: %v", err)
		if db != nil {
			db.Close()
		}
		store = compliance.NewMemoryRecordStore()
	} else {
		defer db.Close()
		store = database.NewSubmissionService(db)
	}

	engine := compliance.NewEngine(primary, reconciler, store, compliance.Config{
		GraceDays:         cfg.GraceDays,
		DueSoonDays:       cfg.DueSoonDays,
		LookbackDays:      cfg.LookbackDays,
		MetricsWindowDays: cfg.MetricsWindowDays,
	})

	calc := statement.NewCalculator(cfg.CleaningVATRate)
	properties := repository.NewMemory[models.PropertyConfig]()
	aggregator := portfolio.NewAggregator(reconciler, calc, properties)

	// Initialize handlers
	engineHandler := handlers.NewEngineHandler(reconciler, engine, calc, aggregator, properties)
	calendarHandler := handlers.NewCalendarHandler(primary)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("reservations-service"))
	})

	// Register health endpoint (outside API group)
	router.GET(EndPointHealth, engineHandler.HealthCheck)

	// Create API v3 router group
	apiV3 := router.Group("/api/v3")
	{
		apiV3.GET(EndPointGetReservations, engineHandler.GetReservations)
		apiV3.POST(EndPointComputeStatement, engineHandler.ComputeStatement)
		apiV3.POST(EndPointValidateCompliance, engineHandler.ValidateCompliance)
		apiV3.POST(EndPointSendCompliance, middleware.AuthMiddleware(cfg), engineHandler.SendCompliance)
		apiV3.GET(EndPointComplianceDashboard, engineHandler.ComplianceDashboard)
		apiV3.GET(EndPointPortfolioOverview, engineHandler.PortfolioOverview)
		apiV3.GET(EndPointPortfolioTrends, engineHandler.PortfolioTrends)
		apiV3.GET(EndPointGetCalendar, calendarHandler.GetCalendar)
		apiV3.POST(EndPointUpdateCalendar, middleware.AuthMiddleware(cfg), calendarHandler.UpdateCalendar)
		apiV3.POST(EndPointRegisterProperty, middleware.AuthMiddleware(cfg), engineHandler.RegisterProperty)
	}

	log.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
