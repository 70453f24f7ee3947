package repositories

import (
	"fmt"
	"log"
	"time"

	"gigpay/internal/config"
	"gigpay/internal/models"
	"gigpay/internal/repositories/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB

// RedisClient is the shared Redis connection.
var RedisClient *redis.Client

// Locker is the global distributed lock provider backing the withdrawal
// flow's per-user serialization.
var Locker cache.Locker

// InitDB initializes PostgreSQL and Redis, runs migrations, and wires the
// global handles.
func InitDB() error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST", "localhost"),
		config.GetEnv("DB_USER", "postgres"),
		config.GetEnv("DB_PASSWORD", "postgres"),
		config.GetEnv("DB_NAME", "gigpay"),
		config.GetEnv("DB_PORT", "5432"),
		config.GetEnv("DB_SSLMODE", "disable"),
	)

	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db

	RedisClient = cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	Locker = cache.NewRedisLocker(RedisClient, 30*time.Second)

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("database initialized")
	return nil
}

// Migrate applies the schema. Split out so tests can run it against their
// own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ProviderAccount{},
		&models.Payment{},
	)
}
