package database

import (
	"fmt"
	"log"
	"time"

	"andromeda/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Connect(config Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Включаем расширения
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return fmt.Errorf("failed to create pg_trgm extension: %w", err)
	}

	// Автомиграция моделей
	err := db.AutoMigrate(
		&models.DataRequest{},
		&models.Comment{},
		&models.Follower{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Создаем индексы
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	// Уникальность заголовка без учета регистра. Прикладная проверка
	// перед вставкой не атомарна, последнее слово за этим индексом.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_data_requests_lower_title ON data_requests(LOWER(title))").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_data_requests_open_time ON data_requests(open_time DESC)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_data_requests_closed ON data_requests(closed)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_data_requests_title ON data_requests USING gin(title gin_trgm_ops)").Error; err != nil {
		return err
	}

	// Комментарии читаются в порядке времени внутри одного запроса данных
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_comments_request_time ON comments(data_request_id, time)").Error; err != nil {
		return err
	}

	// Один пользователь - одна подписка на запрос
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_followers_request_user ON followers(data_request_id, user_id)").Error; err != nil {
		return err
	}

	return nil
}
