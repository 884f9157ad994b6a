package store

import (
	"context"
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/emrgen/headline/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

// idBatchSize caps the ids bound into one IN clause. sqlite refuses more
// than 32766 variables per statement and ListRefs binds each id twice.
const idBatchSize = 10000

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateHeadline(ctx context.Context, headline *model.Headline) error {
	return g.db.WithContext(ctx).Create(headline).Error
}

func (g *GormStore) GetHeadline(ctx context.Context, id uint) (*model.Headline, error) {
	var headline model.Headline
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&headline).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrHeadlineNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return &headline, nil
}

func (g *GormStore) ListHeadlines(ctx context.Context, categories []string) ([]*model.Headline, error) {
	headlines := make([]*model.Headline, 0)
	query := g.db.WithContext(ctx).Model(&model.Headline{})
	if len(categories) > 0 {
		query = query.Where("category IN ?", categories)
	}

	err := query.Order("id asc").Find(&headlines).Error
	return headlines, err
}

func (g *GormStore) ListHeadlinesFromIDs(ctx context.Context, ids []uint) ([]*model.Headline, error) {
	headlines := make([]*model.Headline, 0)
	if len(ids) == 0 {
		return headlines, nil
	}

	for batch := range slices.Chunk(ids, idBatchSize) {
		found := make([]*model.Headline, 0, len(batch))
		if err := g.db.WithContext(ctx).Where("id IN ?", batch).Find(&found).Error; err != nil {
			return nil, err
		}
		headlines = append(headlines, found...)
	}

	slices.SortFunc(headlines, func(a, b *model.Headline) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return headlines, nil
}

func (g *GormStore) UpdateHeadline(ctx context.Context, headline *model.Headline) error {
	res := g.db.WithContext(ctx).
		Model(headline).
		Select("Title", "Category", "Description").
		Updates(headline)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrHeadlineNotFound, headline.ID)
	}

	return nil
}

// DeleteHeadline only stamps deleted_at, the row stays in the table.
func (g *GormStore) DeleteHeadline(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Headline{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrHeadlineNotFound, id)
	}

	return nil
}

func (g *GormStore) ListRefs(ctx context.Context, ids []uint) ([]*model.HeadlineRef, error) {
	refs := make([]*model.HeadlineRef, 0)
	if len(ids) == 0 {
		return refs, nil
	}

	// a ref can match one batch by origin and another by end
	seen := make(map[[2]uint]struct{})
	for batch := range slices.Chunk(ids, idBatchSize) {
		found := make([]*model.HeadlineRef, 0)
		err := g.db.WithContext(ctx).
			Where("origin_id IN ? OR end_id IN ?", batch, batch).
			Find(&found).Error
		if err != nil {
			return nil, err
		}

		for _, ref := range found {
			key := [2]uint{ref.OriginID, ref.EndID}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}

	slices.SortFunc(refs, func(a, b *model.HeadlineRef) int {
		return cmp.Or(cmp.Compare(a.OriginID, b.OriginID), cmp.Compare(a.EndID, b.EndID))
	})

	return refs, nil
}

func (g *GormStore) ListForwardRefIDs(ctx context.Context, id uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := g.db.WithContext(ctx).
		Model(&model.HeadlineRef{}).
		Where("origin_id = ?", id).
		Order("end_id asc").
		Pluck("end_id", &ids).Error
	return ids, err
}

func (g *GormStore) ListBackwardRefIDs(ctx context.Context, id uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := g.db.WithContext(ctx).
		Model(&model.HeadlineRef{}).
		Where("end_id = ?", id).
		Order("origin_id asc").
		Pluck("origin_id", &ids).Error
	return ids, err
}

func (g *GormStore) CreateRefs(ctx context.Context, refs []*model.HeadlineRef) error {
	if len(refs) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).Create(&refs).Error
}

func (g *GormStore) DeleteRefs(ctx context.Context, refs []*model.HeadlineRef) error {
	for _, ref := range refs {
		err := g.db.WithContext(ctx).
			Where("origin_id = ? AND end_id = ?", ref.OriginID, ref.EndID).
			Delete(&model.HeadlineRef{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *GormStore) DetachRefs(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).
		Where("origin_id = ? OR end_id = ?", id, id).
		Delete(&model.HeadlineRef{}).Error
}

func (g *GormStore) DeleteDanglingRefs(ctx context.Context) (int64, error) {
	live := func() *gorm.DB {
		return g.db.WithContext(ctx).Model(&model.Headline{}).Select("id")
	}

	res := g.db.WithContext(ctx).
		Where("origin_id NOT IN (?) OR end_id NOT IN (?)", live(), live()).
		Delete(&model.HeadlineRef{})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		logrus.Infof("removed %d dangling headline refs", res.RowsAffected)
	}

	return res.RowsAffected, nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
