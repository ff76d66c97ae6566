package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"shoplike-service/internal/api"
	"shoplike-service/internal/config"
	"shoplike-service/internal/events"
	"shoplike-service/internal/repository"
	"shoplike-service/internal/service"
	"shoplike-service/migrations"
)

func connectDBEnv(host, port, user, pass, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	db, err := connectDBEnv(
		envOr("DB_HOST", "127.0.0.1"),
		envOr("DB_PORT", "3306"),
		envOr("DB_USER", "root"),
		os.Getenv("DB_PASS"),
		envOr("DB_NAME", "shoplike-db"),
	)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrateProducts(3, db); err != nil {
		log.Fatalf("Failed to migrate products table: %v", err)
	}
	if err := migrations.AutoMigrateOrders(3, db); err != nil {
		log.Fatalf("Failed to migrate orders table: %v", err)
	}
	if err := migrations.AutoMigrateOrderItems(3, db); err != nil {
		log.Fatalf("Failed to migrate order_items table: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: envOr("REDIS_ADDR", "localhost:6379"),
	})

	kafkaWriter := config.NewKafkaWriter(config.OrderTopic)
	producer := events.NewKafkaProducer(kafkaWriter)

	jwtSecret := envOr("JWT_SECRET", "secret")

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	productService := service.NewProductService(productRepo, rdb)
	cartService := service.NewCartService(8)
	confirmations := service.NewRedisConfirmationStore(rdb)
	checkoutService := service.NewCheckoutService(cartService, productService, orderRepo, confirmations, producer)
	fulfillmentService := service.NewFulfillmentService(orderRepo, producer)
	authService := service.NewAuthService(rdb, jwtSecret, envOr("SELLER_USER", "seller"), envOr("SELLER_PASS", "seller"))

	productHandler := api.NewProductHandler(productService)
	cartHandler := api.NewCartHandler(cartService, productService)
	checkoutHandler := api.NewCheckoutHandler(checkoutService)
	orderHandler := api.NewOrderHandler(fulfillmentService)
	authHandler := api.NewAuthHandler(authService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/auth/login", authHandler.Login)

	e.GET("/products", productHandler.ListProducts)
	e.GET("/products/:id", productHandler.GetProduct)
	e.GET("/products/:id/stock", productHandler.GetProductStock)

	// Product management requires a seller token.
	admin := e.Group("")
	admin.Use(echojwt.JWT([]byte(jwtSecret)))
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)

	e.GET("/carts/:cartID", cartHandler.GetCart)
	e.POST("/carts/:cartID/items", cartHandler.AddItem)
	e.PUT("/carts/:cartID/items/:productID", cartHandler.UpdateQuantity)
	e.DELETE("/carts/:cartID/items/:productID", cartHandler.RemoveItem)
	e.DELETE("/carts/:cartID", cartHandler.ClearCart)

	e.POST("/checkout", checkoutHandler.Checkout)

	e.GET("/orders/recent", orderHandler.RecentOrders)
	e.GET("/orders/tracking/:trackingNumber", orderHandler.TrackOrder)
	e.GET("/orders/:id/confirmation", checkoutHandler.GetConfirmation)
	e.PUT("/orders/:id/received", orderHandler.MarkAllReceived)
	e.PUT("/orders/:id/items/:itemID/received", orderHandler.MarkItemReceived)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "shoplike-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + envOr("PORT", "8080")))
}
