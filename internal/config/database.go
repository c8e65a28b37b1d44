package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the configured database and applies pool settings
func ConnectDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger based on mode
	gormLogger := logger.Default.LogMode(logger.Error)
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := Open(dialector, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Database.Driver != "sqlite" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.DBName),
	)

	return db, nil
}

// Open opens a gorm connection with the settings every environment shares.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey
// regardless of driver. The hierarchy tables reference each other in a
// cycle, so references are checked by the services instead of FK
// constraints.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,

		DisableForeignKeyConstraintWhenMigrating: true,
	})
}

func dialectorFor(d DatabaseConfig) (gorm.Dialector, error) {
	switch d.Driver {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.DBName)), nil
	case "sqlite":
		return sqlite.Open(d.Path + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// HealthCheck checks if database is healthy
func HealthCheck(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
