package postgres

import (
	"log"

	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func MustInitDB(cfg *config.PaymentConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.PaymentDB.Dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v\n", err)
	}
	sqlDB.SetMaxIdleConns(cfg.PaymentDB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.PaymentDB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.PaymentDB.ConnMaxLifetime)

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to apply migrations: %v\n", err)
		}
		return db
	}

	if err := AutoMigrate(db); err != nil {
		log.Fatalf("failed to automigrate: %v\n", err)
	}

	return db
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderModel{}, &models.TransactionModel{}, &models.OutboxEventModel{})
}
