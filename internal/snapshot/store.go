package snapshot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
)

// CardSnapshot is the last fetched expense-group list for one card, stored
// whole. It exists for offline display only; mutating flows always hit the
// backend and overwrite the snapshot on the following re-fetch.
type CardSnapshot struct {
	ID        uint      `gorm:"primaryKey"`
	CardID    int64     `gorm:"uniqueIndex;not null"`
	FetchedAt time.Time `gorm:"not null"`
	Payload   []byte    `gorm:"not null"`
}

func (CardSnapshot) TableName() string {
	return "card_snapshots"
}

// ErrNoSnapshot means no list was ever fetched for the card.
var ErrNoSnapshot = errors.New("no snapshot for card")

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&CardSnapshot{}); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Save replaces the card's snapshot with the freshly fetched list.
func (s *Store) Save(cardID int64, groups []expense.Group) error {
	payload, err := json.Marshal(groups)
	if err != nil {
		return err
	}

	snap := CardSnapshot{
		CardID:    cardID,
		FetchedAt: time.Now(),
		Payload:   payload,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&CardSnapshot{}).Error; err != nil {
			return err
		}
		return tx.Create(&snap).Error
	})
	if err != nil {
		s.logger.Error("failed to save snapshot", "card_id", cardID, "error", err)
		return err
	}

	s.logger.Debug("snapshot saved", "card_id", cardID, "groups", len(groups))
	return nil
}

// Load returns the card's snapshot and its fetch time.
func (s *Store) Load(cardID int64) ([]expense.Group, time.Time, error) {
	var snap CardSnapshot
	err := s.db.Where("card_id = ?", cardID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var groups []expense.Group
	if err := json.Unmarshal(snap.Payload, &groups); err != nil {
		return nil, time.Time{}, err
	}
	return groups, snap.FetchedAt, nil
}
