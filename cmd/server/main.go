package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dokan_app_echo/internal/config"
	"dokan_app_echo/internal/handlers"
	appMiddleware "dokan_app_echo/internal/middleware"
	"dokan_app_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Firebase
	authClient, err := services.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Admin auth will not work until valid credentials are provided")
	}

	// Initialize Database
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis. The app degrades gracefully without it: gateway
	// resolution skips caching and submissions lose the cross-request lock.
	cache, err := services.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Redis initialization failed: %v", err)
		cache = nil
	}

	// Initialize services
	waha := services.NewWahaService(cfg.WahaBaseURL, cfg.WahaAPIKey)
	otp := services.NewOTPService(cache, waha)
	sms := services.NewSMSService(db)
	gateways := services.NewGatewayService(db, cache, cfg.DefaultCountryCode)
	orders := services.NewOrderService(db, otp)
	verifications := services.NewVerificationService(db)
	binance := services.NewBinancePayService(cfg.BinanceBaseURL, cfg.BinanceAPIKey)
	midtransClient := services.NewMidtransService(cfg.MidtransServerKey, cfg.MidtransClientKey, cfg.MidtransIsProduction)
	hosted := services.NewHostedCheckoutService(db, midtransClient)
	checkout := services.NewCheckoutService(sms, orders, binance, verifications, cache, cfg.SupportWhatsAppPhone)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	catalogHandler := handlers.NewCatalogHandler(db, cache)
	checkoutHandler := handlers.NewCheckoutHandler(db, gateways, otp, checkout, orders, hosted)
	smsHandler := handlers.NewSMSHandler(sms)
	adminHandler := handlers.NewAdminHandler(db, cache, verifications)

	// Auth routes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Storefront routes
	e.GET("/countries", catalogHandler.ListCountries)
	e.GET("/products", catalogHandler.ListProducts)
	e.GET("/products/:slug", catalogHandler.GetProduct)
	e.POST("/checkout/gateways", checkoutHandler.ResolveGateways)
	e.POST("/checkout/otp", checkoutHandler.RequestOTP)
	e.POST("/checkout/submit", checkoutHandler.Submit)
	e.GET("/orders/:number", checkoutHandler.OrderStatus)
	e.POST("/orders/:number/hosted-checkout", checkoutHandler.InitiateHostedCheckout)

	// Gateway notifications
	e.POST("/callbacks/midtrans", checkoutHandler.HostedCheckoutCallback)

	// SMS forwarder
	internal := e.Group("/internal")
	internal.Use(appMiddleware.RequireAPIKey(cfg.SMSIngestAPIKey))
	internal.POST("/sms", smsHandler.Ingest)

	// Admin routes
	admin := e.Group("/admin")
	admin.Use(appMiddleware.RequireAuth(authClient))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/gateways", adminHandler.ListGateways)
	admin.POST("/gateways", adminHandler.StoreGateway)
	admin.PUT("/gateways/:id", adminHandler.UpdateGateway)
	admin.PUT("/products/:id/gateways", adminHandler.UpdateProductGateways)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/sms/:transaction_id", smsHandler.Lookup)
	admin.GET("/verifications", adminHandler.ListPendingVerifications)
	admin.POST("/verifications/:id/approve", adminHandler.ApproveVerification)
	admin.POST("/verifications/:id/reject", adminHandler.RejectVerification)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
