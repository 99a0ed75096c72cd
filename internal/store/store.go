// Package store persists finished match results in SQLite so totals can
// accumulate across tournament invocations.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lox/arenaforbots/internal/tournament"
)

// MatchRecord is one finished match.
type MatchRecord struct {
	ID        string `gorm:"primaryKey;size:26"`
	Index     int
	Seed      int64
	Episodes  int
	Winner    string `gorm:"size:127"`
	Duration  time.Duration
	CreatedAt time.Time
	Standings []StandingRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// StandingRecord is one controller's placing in a match. Position 0 is the
// first eliminated.
type StandingRecord struct {
	ID         uint   `gorm:"primaryKey"`
	MatchID    string `gorm:"size:26;index:idx_standing_match"`
	Position   int
	Controller string `gorm:"size:127;index:idx_standing_controller"`
	Episode    int
	Score      int
}

var models = []any{&MatchRecord{}, &StandingRecord{}}

// Store wraps a gorm handle.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. An empty path opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases alive and serialises
	// SQLite writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveMatch records a match and its standings in one transaction.
func (s *Store) SaveMatch(ctx context.Context, r tournament.MatchResult) error {
	record := MatchRecord{
		ID:       r.ID,
		Index:    r.Index,
		Seed:     r.Seed,
		Episodes: r.Episodes,
		Winner:   r.Winner,
		Duration: r.Duration,
	}
	for pos, st := range r.Standings {
		record.Standings = append(record.Standings, StandingRecord{
			Position:   pos,
			Controller: st.Name,
			Episode:    st.Episode,
			Score:      st.Score,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", r.ID, err)
	}
	return nil
}

// Totals returns the summed score of every controller across all stored
// matches.
func (s *Store) Totals(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Controller string
		Total      int
	}
	err := s.db.WithContext(ctx).
		Model(&StandingRecord{}).
		Select("controller, SUM(score) AS total").
		Group("controller").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores: %w", err)
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.Controller] = row.Total
	}
	return totals, nil
}

// Matches returns the number of stored matches.
func (s *Store) Matches(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&MatchRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Match loads a stored match with its standings in elimination order.
func (s *Store) Match(ctx context.Context, id string) (*MatchRecord, error) {
	var record MatchRecord
	err := s.db.WithContext(ctx).
		Preload("Standings", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}
	return &record, nil
}

// Recent returns up to limit matches, newest first, without standings.
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	var records []MatchRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return records, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
