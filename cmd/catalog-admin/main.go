package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onlinestore/catalog-admin/internal/api/handlers"
	"github.com/onlinestore/catalog-admin/internal/api/middleware"
	"github.com/onlinestore/catalog-admin/internal/cache"
	"github.com/onlinestore/catalog-admin/internal/config"
	"github.com/onlinestore/catalog-admin/internal/health"
	"github.com/onlinestore/catalog-admin/internal/metrics"
	"github.com/onlinestore/catalog-admin/internal/models"
	repository "github.com/onlinestore/catalog-admin/internal/repositories"
	service "github.com/onlinestore/catalog-admin/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConnect.Host,
		Username: cfg.RedisConnect.Username,
		Password: cfg.RedisConnect.Password,
		DB:       cfg.RedisConnect.DB,
	})

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}
	cancelPing()

	cacheStore := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := cacheStore.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}()

	jwtKey := []byte(cfg.Security.JWTKey)

	categoryService := service.NewCachedCategoryService(
		service.NewCategoryService(repos.Category), cacheStore, &cfg.Cache)
	productService := service.NewCachedProductService(
		service.NewProductService(repos.Product, repos.Category), cacheStore, &cfg.Cache)

	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("✅ Application services initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()

	protect := func(permission string, next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Authenticate(middleware.RequirePermission(permission, next))
	}

	routerMux.HandleFunc("POST /api/v1/categories", protect(models.PermCategoriesCreate, categoryHandler.CreateCategory()))
	routerMux.HandleFunc("GET /api/v1/categories", protect(models.PermCategoriesDefault, categoryHandler.ListCategories()))
	routerMux.HandleFunc("GET /api/v1/categories/active", protect(models.PermCategoriesDefault, categoryHandler.GetActiveCategories()))
	routerMux.HandleFunc("GET /api/v1/categories/{id}", protect(models.PermCategoriesDefault, categoryHandler.GetCategory()))
	routerMux.HandleFunc("PUT /api/v1/categories/{id}", protect(models.PermCategoriesEdit, categoryHandler.UpdateCategory()))
	routerMux.HandleFunc("DELETE /api/v1/categories/{id}", protect(models.PermCategoriesDelete, categoryHandler.DeleteCategory()))
	routerMux.HandleFunc("GET /api/v1/categories/{id}/can-delete", protect(models.PermCategoriesDelete, categoryHandler.CanDeleteCategory()))
	routerMux.HandleFunc("POST /api/v1/categories/{id}/activate", protect(models.PermCategoriesEdit, categoryHandler.ActivateCategory()))
	routerMux.HandleFunc("POST /api/v1/categories/{id}/deactivate", protect(models.PermCategoriesEdit, categoryHandler.DeactivateCategory()))
	routerMux.HandleFunc("PATCH /api/v1/categories/{id}/display-order", protect(models.PermCategoriesEdit, categoryHandler.ChangeDisplayOrder()))

	routerMux.HandleFunc("POST /api/v1/products", protect(models.PermProductsCreate, productHandler.CreateProduct()))
	routerMux.HandleFunc("GET /api/v1/products", protect(models.PermProductsDefault, productHandler.ListProducts()))
	routerMux.HandleFunc("GET /api/v1/products/published", protect(models.PermProductsDefault, productHandler.GetPublishedProducts()))
	routerMux.HandleFunc("GET /api/v1/products/low-stock", protect(models.PermProductsDefault, productHandler.GetLowStockProducts()))
	routerMux.HandleFunc("GET /api/v1/products/out-of-stock", protect(models.PermProductsDefault, productHandler.GetOutOfStockProducts()))
	routerMux.HandleFunc("GET /api/v1/products/{id}", protect(models.PermProductsDefault, productHandler.GetProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", protect(models.PermProductsEdit, productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/products/{id}", protect(models.PermProductsDelete, productHandler.DeleteProduct()))
	routerMux.HandleFunc("POST /api/v1/products/{id}/publish", protect(models.PermProductsPublish, productHandler.PublishProduct()))
	routerMux.HandleFunc("POST /api/v1/products/{id}/unpublish", protect(models.PermProductsPublish, productHandler.UnpublishProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}/stock", protect(models.PermProductsManageStock, productHandler.UpdateStock()))
	routerMux.HandleFunc("POST /api/v1/products/{id}/stock/adjust", protect(models.PermProductsManageStock, productHandler.AdjustStock()))
	routerMux.HandleFunc("POST /api/v1/products/stock/bulk", protect(models.PermProductsManageStock, productHandler.BulkUpdateStock()))
	routerMux.HandleFunc("POST /api/v1/products/stock/check", protect(models.PermProductsDefault, productHandler.CheckStock()))

	routerMux.HandleFunc("GET /api/v1/categories/{id}/products", protect(models.PermProductsDefault, productHandler.GetProductsByCategory()))

	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.HandleFunc("GET /health", healthHandler.HandlerFunc)

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}
}
