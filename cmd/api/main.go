package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/controllers"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/internal/gis"
	"github.com/address-resolver/internal/regioncode"
	"github.com/address-resolver/internal/resolver"
	"github.com/address-resolver/routes"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	if err := config.Load(viper.GetString("app.resolver_config")); err != nil {
		logger.Fatal("Không đọc được cấu hình resolver", zap.Error(err))
	}

	logger.Info("Starting Address Resolver Service...", zap.String("env", viper.GetString("app.env")))

	ctx := context.Background()
	probes := make(map[string]controllers.Probe)

	// MongoDB (tùy chọn)
	var mongoDB *mongo.Database
	if uri := viper.GetString("mongo.url"); uri != "" {
		client, err := initMongoDB(ctx, uri, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
			}
		}()
		mongoDB = client.Database(viper.GetString("mongo.database"))
		probes["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}

	// PostgreSQL cho mã vùng (tùy chọn)
	var regions resolver.RegionCodeLookup
	if dsn := viper.GetString("postgres.dsn"); dsn != "" {
		pool, err := regioncode.NewPool(ctx, dsn, viper.GetInt32("postgres.max_conns"))
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pool.Close()

		store, err := regioncode.NewStore(pool, config.C.Resolver.RegionCodeCacheSize, logger)
		if err != nil {
			logger.Fatal("Failed to create region code store", zap.Error(err))
		}
		regions = store
		probes["postgres"] = pingPool(pool)
	} else {
		logger.Warn("postgres.dsn trống, KLADR sẽ không có mã vùng")
	}

	cacheService, err := initCache(mongoDB, probes, logger)
	if err != nil {
		logger.Fatal("Failed to create cache service", zap.Error(err))
	}
	if cacheService != nil {
		defer cacheService.Close()
	}

	gisClient := gis.NewClient(gis.ClientConfig{
		BaseURL:     viper.GetString("gis.url"),
		Token:       viper.GetString("gis.token"),
		AppName:     config.C.Gis.AppName,
		AddressType: config.C.Gis.AddressType,
		PageSize:    config.C.Gis.ChildrenPageSize,
		Timeout:     config.RequestTimeout(),
	}, logger)

	addressResolver := resolver.New(gisClient, resolver.Config{
		PageStep:    config.C.Resolver.PageStep,
		MaxPageSize: config.C.Resolver.MaxPageSize,
		CountryCode: config.C.Resolver.CountryCode,
	}, logger)

	addressService := services.NewAddressService(addressResolver, regions, cacheService, logger)

	addressController := controllers.NewAddressController(addressService, probes, logger)
	adminController := controllers.NewAdminController(addressService, logger)

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	server := &http.Server{
		Addr:              ":" + viper.GetString("app.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.resolver_config", "config/resolver.yaml")
	viper.SetDefault("gis.url", "https://address.pochta.ru/suggest/api/v4_5")
	viper.SetDefault("gis.token", "")
	viper.SetDefault("mongo.url", "")
	viper.SetDefault("mongo.database", "address_resolver")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("postgres.dsn", "")
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("cache.backend", "hybrid")
	viper.SetDefault("cache.l1_size", 10000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.warmup", 1000)

	// APP_ENV, MONGO_URL, REDIS_URL, POSTGRES_DSN, GIS_TOKEN ...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger khởi tạo structured logger
func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

func initMongoDB(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}

// initCache chọn backend theo cache.backend; thiếu phụ thuộc thì lùi về memory
func initCache(mongoDB *mongo.Database, probes map[string]controllers.Probe, logger *zap.Logger) (services.ICacheService, error) {
	backend := viper.GetString("cache.backend")
	ttl := viper.GetDuration("cache.ttl")
	l1Size := viper.GetInt("cache.l1_size")

	var redisCache *services.RedisCacheService
	if url := viper.GetString("redis.url"); url != "" && (backend == "hybrid" || backend == "redis") {
		var err error
		redisCache, err = services.NewRedisCacheService(url, ttl, logger)
		if err != nil {
			return nil, err
		}
		probes["redis"] = redisCache.Ping
	}

	var mongoCache *services.MongoCacheService
	if mongoDB != nil && (backend == "hybrid" || backend == "mongo") {
		var err error
		mongoCache, err = services.NewMongoCacheService(mongoDB, l1Size, ttl, logger)
		if err != nil {
			return nil, err
		}
		if n := viper.GetInt("cache.warmup"); n > 0 {
			warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := mongoCache.WarmUp(warmCtx, n); err != nil {
				logger.Warn("Warm up cache lỗi", zap.Error(err))
			}
			cancel()
		}
	}

	switch {
	case backend == "none":
		logger.Info("Cache kết quả bị tắt")
		return nil, nil
	case redisCache != nil && mongoCache != nil:
		logger.Info("Using hybrid cache (Redis + MongoDB)")
		return services.NewHybridCacheService(redisCache, mongoCache, logger), nil
	case redisCache != nil:
		logger.Info("Using Redis cache")
		return redisCache, nil
	case mongoCache != nil:
		logger.Info("Using MongoDB cache")
		return mongoCache, nil
	}

	logger.Warn("Không có Redis/MongoDB cho cache, dùng in-memory", zap.String("backend", backend))
	memory := services.NewCacheService(ttl)
	memory.StartCleanupWorker(context.Background(), 10*time.Minute)
	return memory, nil
}

func pingPool(pool *pgxpool.Pool) controllers.Probe {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}
