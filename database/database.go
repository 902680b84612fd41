package database

import (
	"fmt"
	"log"

	"learnhub/config"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// ConnectDb opens the configured database, tunes the pool and runs migrations.
// The returned instance is handed to every component that needs persistence.
func ConnectDb(cfg *config.Config) *DbInstance {
	gormCfg := &gorm.Config{}
	if cfg.DBLogSQL {
		gormCfg.Logger = NewGormLogger()
	} else {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Warn)
	}

	db, err := gorm.Open(dialector(cfg), gormCfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)   // Maximum open connections
	sqlDB.SetMaxIdleConns(5)    // Maximum idle connections
	sqlDB.SetConnMaxLifetime(0) // No timeout

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	return &DbInstance{Db: db}
}

func dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn)
	case "sqlite":
		return sqlite.Open(cfg.DBName + ".db")
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn)
	}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Permission{},
		&models.LoginTracking{},
		&courseModels.Course{},
		&courseModels.CourseSettings{},
		&courseModels.Lesson{},
		&courseModels.LessonCompletion{},
		&courseModels.QuizQuestion{},
		&courseModels.QuizAttempt{},
		&courseModels.Enrollment{},
		&courseModels.Announcement{},
		&courseModels.Badge{},
		&courseModels.UserBadge{},
		&courseModels.Certificate{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}
