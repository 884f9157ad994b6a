// Package graph keeps the directed references between headlines.
//
// A reference is a single row (origin, end). It is a forward ref of the
// origin and a backward ref of the end, so both views always agree.
package graph

import (
	"context"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/store"
	"github.com/sirupsen/logrus"
)

// SyncResult reports the refs a sync added and removed, by the ID of the
// headline on the other end.
type SyncResult struct {
	Attached []uint
	Detached []uint
}

// Changed reports whether the sync touched any row.
func (r *SyncResult) Changed() bool {
	return len(r.Attached) > 0 || len(r.Detached) > 0
}

// Graph reads and reconciles headline refs through a store. Bind it to a
// transaction store to make a sync atomic with the surrounding writes.
type Graph struct {
	store store.Store
}

func New(store store.Store) *Graph {
	return &Graph{store: store}
}

// ForwardRefs returns the live headlines id refers to, ordered by ID.
func (g *Graph) ForwardRefs(ctx context.Context, id uint) ([]*model.Headline, error) {
	ids, err := g.store.ListForwardRefIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return g.store.ListHeadlinesFromIDs(ctx, ids)
}

// BackwardRefs returns the live headlines that refer to id, ordered by ID.
func (g *Graph) BackwardRefs(ctx context.Context, id uint) ([]*model.Headline, error) {
	ids, err := g.store.ListBackwardRefIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return g.store.ListHeadlinesFromIDs(ctx, ids)
}

// ForwardRefIDs returns the end IDs of the refs id originates, live or not.
func (g *Graph) ForwardRefIDs(ctx context.Context, id uint) ([]uint, error) {
	return g.store.ListForwardRefIDs(ctx, id)
}

// BackwardRefIDs returns the origin IDs of the refs ending at id, live or not.
func (g *Graph) BackwardRefIDs(ctx context.Context, id uint) ([]uint, error) {
	return g.store.ListBackwardRefIDs(ctx, id)
}

// Attach resolves ForwardRefs and BackwardRefs of every headline with one
// ref query and one headline query. Refs to deleted headlines are skipped.
func (g *Graph) Attach(ctx context.Context, headlines ...*model.Headline) error {
	if len(headlines) == 0 {
		return nil
	}

	index := make(map[uint][]*model.Headline, len(headlines))
	ids := make([]uint, 0, len(headlines))
	for _, h := range headlines {
		h.ForwardRefs = make([]*model.Headline, 0)
		h.BackwardRefs = make([]*model.Headline, 0)
		if _, ok := index[h.ID]; !ok {
			ids = append(ids, h.ID)
		}
		index[h.ID] = append(index[h.ID], h)
	}

	refs, err := g.store.ListRefs(ctx, ids)
	if err != nil {
		return err
	}

	others := mapset.NewSet[uint]()
	for _, ref := range refs {
		others.Add(ref.OriginID)
		others.Add(ref.EndID)
	}

	related, err := g.store.ListHeadlinesFromIDs(ctx, sorted(others))
	if err != nil {
		return err
	}
	live := make(map[uint]*model.Headline, len(related))
	for _, h := range related {
		live[h.ID] = h
	}

	// refs come ordered by (origin, end) so both views end up ordered by ID
	for _, ref := range refs {
		if end, ok := live[ref.EndID]; ok {
			for _, h := range index[ref.OriginID] {
				h.ForwardRefs = append(h.ForwardRefs, end)
			}
		}
		if origin, ok := live[ref.OriginID]; ok {
			for _, h := range index[ref.EndID] {
				h.BackwardRefs = append(h.BackwardRefs, origin)
			}
		}
	}

	return nil
}

// SyncForward makes targets the complete set of headlines id refers to.
// Refs already present are left untouched.
func (g *Graph) SyncForward(ctx context.Context, id uint, targets mapset.Set[uint]) (*SyncResult, error) {
	current, err := g.store.ListForwardRefIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := g.sync(ctx, current, targets, func(end uint) *model.HeadlineRef {
		return &model.HeadlineRef{OriginID: id, EndID: end}
	})
	if err != nil {
		return nil, err
	}

	if result.Changed() {
		logrus.Infof("headline %d forward refs: attached %v, detached %v", id, result.Attached, result.Detached)
	}

	return result, nil
}

// SyncBackward makes sources the complete set of headlines referring to id.
func (g *Graph) SyncBackward(ctx context.Context, id uint, sources mapset.Set[uint]) (*SyncResult, error) {
	current, err := g.store.ListBackwardRefIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := g.sync(ctx, current, sources, func(origin uint) *model.HeadlineRef {
		return &model.HeadlineRef{OriginID: origin, EndID: id}
	})
	if err != nil {
		return nil, err
	}

	if result.Changed() {
		logrus.Infof("headline %d backward refs: attached %v, detached %v", id, result.Attached, result.Detached)
	}

	return result, nil
}

// DetachAll removes every ref where id is the origin or the end.
func (g *Graph) DetachAll(ctx context.Context, id uint) error {
	return g.store.DetachRefs(ctx, id)
}

func (g *Graph) sync(ctx context.Context, current []uint, wanted mapset.Set[uint], ref func(other uint) *model.HeadlineRef) (*SyncResult, error) {
	if wanted == nil {
		wanted = mapset.NewSet[uint]()
	}
	existing := mapset.NewSet[uint](current...)

	result := &SyncResult{
		Attached: sorted(wanted.Difference(existing)),
		Detached: sorted(existing.Difference(wanted)),
	}

	detached := make([]*model.HeadlineRef, 0, len(result.Detached))
	for _, other := range result.Detached {
		detached = append(detached, ref(other))
	}
	if err := g.store.DeleteRefs(ctx, detached); err != nil {
		return nil, err
	}

	attached := make([]*model.HeadlineRef, 0, len(result.Attached))
	for _, other := range result.Attached {
		attached = append(attached, ref(other))
	}
	if err := g.store.CreateRefs(ctx, attached); err != nil {
		return nil, err
	}

	return result, nil
}

func sorted(set mapset.Set[uint]) []uint {
	ids := set.ToSlice()
	slices.Sort(ids)
	return ids
}
