package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

// HistoryService persists served predictions for the history endpoint.
// Like the cache it degrades to no-ops when disabled, so prediction serving
// never depends on the database.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(cfg config.DatabaseConfig) (*HistoryService, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect history db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if err := db.AutoMigrate(&models.PredictionLog{}); err != nil {
		return nil, fmt.Errorf("migrate prediction_log: %w", err)
	}
	return &HistoryService{db: db}, nil
}

// NewDisabledHistoryService returns a store that records nothing.
func NewDisabledHistoryService() *HistoryService {
	return &HistoryService{db: nil}
}

func (s *HistoryService) Enabled() bool {
	return s.db != nil
}

func (s *HistoryService) Log(ctx context.Context, entry *models.PredictionLog) error {
	if s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// Recent returns logged predictions newest first, optionally filtered by
// station and bounded by a cursor timestamp.
func (s *HistoryService) Recent(ctx context.Context, limit int, before *time.Time, station string) ([]models.PredictionLog, error) {
	if s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.PredictionLog{}).
		Order("ts DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("ts < ?", *before)
	}
	if station != "" {
		query = query.Where("station = ?", station)
	}

	var rows []models.PredictionLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
