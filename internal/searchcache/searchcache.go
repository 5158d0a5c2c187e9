// Package searchcache persists shaped geocode and route responses keyed by
// a request hash, so repeated identical queries skip the vendor round trip.
package searchcache

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CachedResponse is one stored search response.
type CachedResponse struct {
	ID        uint           `gorm:"primarykey"`
	Category  string         `gorm:"size:32;uniqueIndex:idx_category_key"`
	Key       string         `gorm:"size:64;uniqueIndex:idx_category_key"`
	Payload   datatypes.JSON `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store implements the coordinator's ResultCache on a gorm connection.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	log zerolog.Logger

	now func() time.Time
}

// New migrates the cache table and returns a store. Entries older than ttl
// are treated as absent and lazily overwritten.
func New(db *gorm.DB, ttl time.Duration, log zerolog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&CachedResponse{}); err != nil {
		return nil, err
	}
	return &Store{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "searchcache").Logger(),
		now: time.Now,
	}, nil
}

// Lookup returns the stored payload for a request hash, if present and not
// expired.
func (s *Store) Lookup(category, key string) ([]byte, bool) {
	var entry CachedResponse
	err := s.db.
		Where("category = ? AND key = ? AND expires_at > ?", category, key, s.now()).
		First(&entry).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.log.Warn().Err(err).Msg("cache lookup failed")
		}
		return nil, false
	}
	return entry.Payload, true
}

// Store upserts the payload under the request hash with a fresh TTL.
func (s *Store) Store(category, key string, payload []byte) {
	entry := CachedResponse{
		Category:  category,
		Key:       key,
		Payload:   datatypes.JSON(payload),
		ExpiresAt: s.now().Add(s.ttl),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		s.log.Warn().Err(err).Msg("cache store failed")
	}
}

// Prune deletes expired entries and reports how many were removed.
func (s *Store) Prune() (int64, error) {
	res := s.db.Where("expires_at <= ?", s.now()).Delete(&CachedResponse{})
	return res.RowsAffected, res.Error
}
