package store

import (
	"context"
	"errors"

	"github.com/emrgen/headline/internal/model"
)

var (
	ErrHeadlineNotFound = errors.New("headline not found")
)

type Store interface {
	HeadlineStore
	HeadlineRefStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type HeadlineStore interface {
	// CreateHeadline inserts a new headline and assigns its ID.
	CreateHeadline(ctx context.Context, headline *model.Headline) error
	// GetHeadline retrieves a live headline by ID.
	GetHeadline(ctx context.Context, id uint) (*model.Headline, error)
	// ListHeadlines retrieves live headlines ordered by ID, restricted to the
	// given categories when any are passed.
	ListHeadlines(ctx context.Context, categories []string) ([]*model.Headline, error)
	// ListHeadlinesFromIDs retrieves the live headlines among ids, ordered by ID.
	ListHeadlinesFromIDs(ctx context.Context, ids []uint) ([]*model.Headline, error)
	// UpdateHeadline writes the title, category and description of a live headline.
	UpdateHeadline(ctx context.Context, headline *model.Headline) error
	// DeleteHeadline soft deletes a live headline.
	DeleteHeadline(ctx context.Context, id uint) error
}

type HeadlineRefStore interface {
	// ListRefs retrieves every ref touching one of ids, on either end.
	ListRefs(ctx context.Context, ids []uint) ([]*model.HeadlineRef, error)
	// ListForwardRefIDs retrieves the end IDs of refs originating at id.
	ListForwardRefIDs(ctx context.Context, id uint) ([]uint, error)
	// ListBackwardRefIDs retrieves the origin IDs of refs ending at id.
	ListBackwardRefIDs(ctx context.Context, id uint) ([]uint, error)
	// CreateRefs inserts refs.
	CreateRefs(ctx context.Context, refs []*model.HeadlineRef) error
	// DeleteRefs removes refs.
	DeleteRefs(ctx context.Context, refs []*model.HeadlineRef) error
	// DetachRefs removes every ref where id is the origin or the end.
	DetachRefs(ctx context.Context, id uint) error
	// DeleteDanglingRefs removes refs whose origin or end is not a live headline.
	DeleteDanglingRefs(ctx context.Context) (int64, error)
}
