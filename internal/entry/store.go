package entry

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("entry not found")
	ErrNotLatest = errors.New("entry is not the latest version")
)

// Store persists entries and enforces the version-chain invariant: per chain
// exactly one row with is_latest=true, versions strictly increasing.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new root entry (version 1, latest, no original).
func (s *Store) Create(e *Entry) error {
	e.Version = 1
	e.IsLatest = true
	e.OriginalID = nil
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// Get fetches one entry scoped to its owner.
func (s *Store) Get(id, userID uint) (*Entry, error) {
	var e Entry
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LatestForOwner lists current versions for an owner, newest first. An empty
// kind returns both kinds.
func (s *Store) LatestForOwner(userID uint, kind Kind) ([]Entry, error) {
	q := s.db.Where("user_id = ? AND is_latest = ?", userID, true)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var entries []Entry
	if err := q.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// WithEmbeddingForOwner lists current versions that carry an embedding.
// Entries without a vector are excluded from similarity ranking.
func (s *Store) WithEmbeddingForOwner(userID uint, kind Kind) ([]Entry, error) {
	q := s.db.Where("user_id = ? AND is_latest = ? AND embedding IS NOT NULL", userID, true)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var entries []Entry
	if err := q.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// NewestForOwner returns the most recently created entry of any kind, or nil
// when the owner has none. Used for profile staleness checks.
func (s *Store) NewestForOwner(userID uint) (*Entry, error) {
	var e Entry
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Versions lists an entry's whole chain in creation order.
func (s *Store) Versions(id, userID uint) ([]Entry, error) {
	e, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	root := e.RootID()
	var chain []Entry
	err = s.db.
		Where("user_id = ? AND (id = ? OR original_id = ?)", userID, root, root).
		Order("version asc").
		Find(&chain).Error
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// Edit supersedes the latest version of a chain: inside one transaction the
// old row's is_latest flips to false and a new row is inserted with
// version+1 and original_id pointing at the chain root. Readers never
// observe zero or two latest rows for the chain.
func (s *Store) Edit(id, userID uint, title, description string, embedding datatypes.JSON) (*Entry, error) {
	prev, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if !prev.IsLatest {
		return nil, ErrNotLatest
	}

	next := &Entry{
		Kind:        prev.Kind,
		UserID:      prev.UserID,
		Title:       title,
		Description: description,
		RawResponse: prev.RawResponse,
		Embedding:   embedding,
		Version:     prev.Version + 1,
		IsLatest:    true,
		CreatedAt:   time.Now(),
	}
	root := prev.RootID()
	next.OriginalID = &root

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Entry{}).
			Where("id = ? AND is_latest = ?", prev.ID, true).
			Update("is_latest", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			// Lost a race with a concurrent edit of the same chain.
			return ErrNotLatest
		}
		return tx.Create(next).Error
	})
	if err != nil {
		return nil, fmt.Errorf("edit entry %d: %w", id, err)
	}
	return next, nil
}

// Delete removes an entry's entire version chain.
func (s *Store) Delete(id, userID uint) error {
	e, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	root := e.RootID()
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Where("user_id = ? AND (id = ? OR original_id = ?)", userID, root, root).
			Delete(&Entry{}).Error
	})
}

// SetEmbedding attaches a vector to an existing entry (backfill path).
func (s *Store) SetEmbedding(id uint, vec []float64) error {
	raw := EncodeEmbedding(vec)
	if raw == nil {
		return errors.New("empty embedding")
	}
	res := s.db.Model(&Entry{}).Where("id = ?", id).Update("embedding", raw)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MissingEmbeddings lists current versions without a vector, across owners.
func (s *Store) MissingEmbeddings(limit int) ([]Entry, error) {
	var entries []Entry
	q := s.db.Where("is_latest = ? AND embedding IS NULL", true).Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
