package mysql

import (
	"context"
	"fmt"
	"net"
	"time"

	"purchase-order-service/internal/config"
	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/logger"
	"purchase-order-service/internal/repository"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DSN renders the connection string for cfg.
func DSN(cfg *config.DatabaseConfig) string {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.Username
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	dc.DBName = cfg.Database
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	dc.Collation = "utf8mb4_unicode_ci"
	dc.ReadTimeout = 10 * time.Second
	dc.WriteTimeout = 10 * time.Second
	return dc.FormatDSN()
}

func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.NewGormLogger(logger.ParseGormLevel(cfg.LogLevel), cfg.SlowThreshold),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(repository.AllRecords()...); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	if cfg.SeedStatuses {
		if err := SeedStatuses(context.Background(), db); err != nil {
			return nil, err
		}
	}

	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}

// SeedStatuses inserts the four status rows, leaving rows that already exist by name untouched.
func SeedStatuses(ctx context.Context, db *gorm.DB) error {
	rows := make([]repository.OrderStatusRecord, 0, len(domain.AllStatusCodes))
	for _, c := range domain.AllStatusCodes {
		rows = append(rows, repository.OrderStatusRecord{ID: domain.EncodeID(domain.NewID()), Name: c.String()})
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed order statuses: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
