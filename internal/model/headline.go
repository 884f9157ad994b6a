package model

import "gorm.io/gorm"

const (
	MaxTitleLength = 100
)

// Headline is a book, sound or bookmark entry.
// Deleted headlines keep their row, gorm.Model's DeletedAt hides them from
// every default-scoped query.
type Headline struct {
	gorm.Model
	Title       string  `gorm:"size:100;not null"`
	Category    *string `gorm:"size:32;index:idx_headlines_category"`
	Description *string

	// resolved by the reference graph, never persisted on this table
	ForwardRefs  []*Headline `gorm:"-"`
	BackwardRefs []*Headline `gorm:"-"`
}

func (Headline) TableName() string {
	return "headlines"
}

// ForwardRefIDs returns the ids of the loaded forward refs.
func (h *Headline) ForwardRefIDs() []uint {
	return headlineIDs(h.ForwardRefs)
}

// BackwardRefIDs returns the ids of the loaded backward refs.
func (h *Headline) BackwardRefIDs() []uint {
	return headlineIDs(h.BackwardRefs)
}

func headlineIDs(headlines []*Headline) []uint {
	ids := make([]uint, 0, len(headlines))
	for _, h := range headlines {
		ids = append(ids, h.ID)
	}
	return ids
}
