package entry

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Kind discriminates the two entry variants. Both share the same shape and
// version-chain behavior.
type Kind string

const (
	KindDirection Kind = "direction"
	KindReference Kind = "reference"
)

func (k Kind) Valid() bool {
	return k == KindDirection || k == KindReference
}

// Entry is one confirmed growth direction or reference. Edits never mutate a
// row: they insert a new version and flip the previous latest row.
type Entry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Kind        Kind           `gorm:"type:varchar(16);not null;index" json:"kind"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"size:140;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	RawResponse string         `gorm:"type:text" json:"-"`
	Embedding   datatypes.JSON `json:"-"`
	OriginalID  *uint          `gorm:"index" json:"original_id,omitempty"`
	Version     int            `gorm:"not null;default:1" json:"version"`
	IsLatest    bool           `gorm:"not null;default:true;index" json:"is_latest"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}

// RootID resolves the root of the entry's version chain.
func (e *Entry) RootID() uint {
	if e.OriginalID != nil {
		return *e.OriginalID
	}
	return e.ID
}

// EmbeddingVector decodes the stored JSON embedding. Returns nil when the
// entry has no embedding or the stored payload is unreadable.
func (e *Entry) EmbeddingVector() []float64 {
	if len(e.Embedding) == 0 {
		return nil
	}
	var vec []float64
	if err := json.Unmarshal(e.Embedding, &vec); err != nil {
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

// EncodeEmbedding serializes a vector for storage. Nil input yields a nil
// column so absent embeddings stay absent.
func EncodeEmbedding(vec []float64) datatypes.JSON {
	if len(vec) == 0 {
		return nil
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
