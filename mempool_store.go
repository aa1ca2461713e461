package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

// MempoolRecord is a transaction seen in the node's mempool.
type MempoolRecord struct {
	TxID           string         `gorm:"column:tx_id;primaryKey"`
	FirstSeenSlot  uint64         `gorm:"column:first_seen_slot;not null"`
	LastSeenSlot   uint64         `gorm:"column:last_seen_slot;not null"`
	Fee            uint64         `gorm:"column:fee;not null;default:0"`
	InputCount     int            `gorm:"column:input_count;not null;default:0"`
	OutputCount    int            `gorm:"column:output_count;not null;default:0"`
	OutputLovelace uint64         `gorm:"column:output_lovelace;not null;default:0"`
	Outputs        datatypes.JSON `gorm:"column:outputs;type:text"`
	CBOR           *string        `gorm:"column:cbor"`
	SeenCount      int            `gorm:"column:seen_count;not null;default:1"`
	FirstSeenAt    time.Time      `gorm:"column:first_seen_at;not null"`
	LastSeenAt     time.Time      `gorm:"column:last_seen_at;not null;index"`
}

func (MempoolRecord) TableName() string {
	return "mempool_transactions"
}

// newMempoolRecord summarizes tx as seen in the snapshot acquired at slot.
// Transactions known only by id keep zero amounts.
func newMempoolRecord(tx ogmios.MempoolTransaction, slot uint64, now time.Time) (MempoolRecord, error) {
	rec := MempoolRecord{
		TxID:          tx.ID(),
		FirstSeenSlot: slot,
		LastSeenSlot:  slot,
		SeenCount:     1,
		FirstSeenAt:   now,
		LastSeenAt:    now,
	}
	if full := tx.Tx; full != nil {
		if full.Fee != nil {
			rec.Fee = full.Fee.Lovelace
		}
		rec.InputCount = len(full.Inputs)
		rec.OutputCount = len(full.Outputs)
		for _, out := range full.Outputs {
			rec.OutputLovelace += out.Value.Lovelace
		}
		outputs, err := json.Marshal(full.Outputs)
		if err != nil {
			return MempoolRecord{}, fmt.Errorf("failed to encode outputs of %s: %w", rec.TxID, err)
		}
		rec.Outputs = datatypes.JSON(outputs)
		rec.CBOR = full.CBOR
	}
	return rec, nil
}

// MempoolStore persists mempool sightings.
type MempoolStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMempoolStore(db *gorm.DB) *MempoolStore {
	return &MempoolStore{db: db, now: time.Now}
}

// Record inserts tx, or bumps the sighting of an already known one.
// It reports whether the transaction was new.
func (s *MempoolStore) Record(ctx context.Context, tx ogmios.MempoolTransaction, slot uint64) (bool, error) {
	if tx.ID() == "" {
		return false, fmt.Errorf("mempool transaction has no id")
	}
	now := s.now().UTC()
	rec, err := newMempoolRecord(tx, slot, now)
	if err != nil {
		return false, err
	}

	var isNew bool
	err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&MempoolRecord{}).Where("tx_id = ?", rec.TxID).Count(&count).Error; err != nil {
			return err
		}
		isNew = count == 0

		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tx_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_seen_slot": slot,
				"last_seen_at":   now,
				"seen_count":     gorm.Expr("seen_count + 1"),
			}),
		}).Create(&rec).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to record mempool transaction %s: %w", rec.TxID, err)
	}
	return isNew, nil
}

// Get returns the record of txID, or nil when it was never seen.
func (s *MempoolStore) Get(ctx context.Context, txID string) (*MempoolRecord, error) {
	var rec MempoolRecord
	err := s.db.WithContext(ctx).Where("tx_id = ?", txID).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.TxID == "" {
		return nil, nil
	}
	return &rec, nil
}

// Recent returns up to limit records, most recently seen first.
func (s *MempoolStore) Recent(ctx context.Context, limit int) ([]MempoolRecord, error) {
	var records []MempoolRecord
	err := s.db.WithContext(ctx).
		Order("last_seen_at DESC").
		Order("tx_id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MempoolStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&MempoolRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Prune deletes records not seen within maxAge and returns how many went.
func (s *MempoolStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-maxAge)
	res := s.db.WithContext(ctx).Where("last_seen_at < ?", cutoff).Delete(&MempoolRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune mempool transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
