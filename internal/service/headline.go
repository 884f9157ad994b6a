package service

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/emrgen/headline/internal/graph"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/queue"
	"github.com/emrgen/headline/internal/store"
	"github.com/sirupsen/logrus"
)

var (
	_ v1.HeadlineServiceServer = (*HeadlineService)(nil)
)

// NewHeadlineService creates a new HeadlineService.
func NewHeadlineService(store store.Store, queue queue.HeadlineQueue) *HeadlineService {
	return &HeadlineService{
		store: store,
		queue: queue,
	}
}

// HeadlineService is a service for managing headlines and their refs.
type HeadlineService struct {
	store store.Store
	queue queue.HeadlineQueue
}

// ListCategories lists the known categories.
func (h *HeadlineService) ListCategories(ctx context.Context, request *v1.ListCategoriesRequest) (*v1.ListCategoriesResponse, error) {
	return &v1.ListCategoriesResponse{
		Categories: model.Categories(),
	}, nil
}

// ListHeadlines lists live headlines ordered by id, with refs resolved.
// Unknown category tokens are dropped, an empty filter lists everything.
func (h *HeadlineService) ListHeadlines(ctx context.Context, request *v1.ListHeadlinesRequest) (*v1.ListHeadlinesResponse, error) {
	categories := ParseCategories(request.Categories)

	headlines, err := h.store.ListHeadlines(ctx, categories)
	if err != nil {
		return nil, err
	}

	if err = graph.New(h.store).Attach(ctx, headlines...); err != nil {
		return nil, err
	}

	return &v1.ListHeadlinesResponse{
		Headlines: toHeadlines(headlines),
	}, nil
}

// GetHeadline retrieves a headline.
func (h *HeadlineService) GetHeadline(ctx context.Context, request *v1.GetHeadlineRequest) (*v1.GetHeadlineResponse, error) {
	headline, err := h.store.GetHeadline(ctx, request.Id)
	if err != nil {
		return nil, notFound(err)
	}

	if err = graph.New(h.store).Attach(ctx, headline); err != nil {
		return nil, err
	}

	return &v1.GetHeadlineResponse{
		Headline: toHeadline(headline),
	}, nil
}

// CreateHeadline creates a headline and its initial refs in one transaction.
func (h *HeadlineService) CreateHeadline(ctx context.Context, request *v1.CreateHeadlineRequest) (*v1.CreateHeadlineResponse, error) {
	input := headlineFields{
		Title:       normalize(request.Title),
		Category:    normalize(request.Category.Value),
		Description: normalize(request.Description.Value),
	}

	var headline *model.Headline
	err := h.store.Transaction(ctx, func(tx store.Store) error {
		fields := make(FieldErrors)
		input.validate(fields)

		forward, err := validateRefs(ctx, tx, 0, fieldForwardRefs, request.ForwardRefs, fields)
		if err != nil {
			return err
		}
		backward, err := validateRefs(ctx, tx, 0, fieldBackwardRefs, request.BackwardRefs, fields)
		if err != nil {
			return err
		}
		if !fields.Empty() {
			return NewValidationError(fields)
		}

		headline = &model.Headline{
			Title:       *input.Title,
			Category:    input.Category,
			Description: input.Description,
		}
		if err = tx.CreateHeadline(ctx, headline); err != nil {
			return err
		}

		g := graph.New(tx)
		if err = reconcileRefs(ctx, g, headline.ID, forward, backward); err != nil {
			return err
		}

		return g.Attach(ctx, headline)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("created headline %d", headline.ID)
	h.publish(ctx, queue.HeadlineCreated, headline.ID, headline.ForwardRefIDs(), headline.BackwardRefIDs())

	return &v1.CreateHeadlineResponse{
		Headline: toHeadline(headline),
	}, nil
}

// UpdateHeadline updates a headline and optionally replaces its refs.
// A requested ref that already exists in the opposite direction is a
// conflict, and nothing is written.
func (h *HeadlineService) UpdateHeadline(ctx context.Context, request *v1.UpdateHeadlineRequest) (*v1.UpdateHeadlineResponse, error) {
	var headline *model.Headline
	err := h.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		headline, err = tx.GetHeadline(ctx, request.Id)
		if err != nil {
			return notFound(err)
		}

		// absent keys keep the stored value, explicit nulls clear it
		input := headlineFields{
			Title:       normalize(request.Title),
			Category:    headline.Category,
			Description: headline.Description,
		}
		if request.Category.Set {
			input.Category = normalize(request.Category.Value)
		}
		if request.Description.Set {
			input.Description = normalize(request.Description.Value)
		}

		fields := make(FieldErrors)
		input.validate(fields)

		forward, err := validateRefs(ctx, tx, headline.ID, fieldForwardRefs, request.ForwardRefs, fields)
		if err != nil {
			return err
		}
		backward, err := validateRefs(ctx, tx, headline.ID, fieldBackwardRefs, request.BackwardRefs, fields)
		if err != nil {
			return err
		}
		if !fields.Empty() {
			return NewValidationError(fields)
		}

		// both directions are checked against the refs as they were before
		// this request, before anything is written
		g := graph.New(tx)
		currentForward, err := g.ForwardRefIDs(ctx, headline.ID)
		if err != nil {
			return err
		}
		currentBackward, err := g.BackwardRefIDs(ctx, headline.ID)
		if err != nil {
			return err
		}
		if overlaps(forward, currentBackward) {
			return newConflictError(fieldForwardRefs)
		}
		if overlaps(backward, currentForward) {
			return newConflictError(fieldBackwardRefs)
		}

		headline.Title = *input.Title
		headline.Category = input.Category
		headline.Description = input.Description
		if err = tx.UpdateHeadline(ctx, headline); err != nil {
			return notFound(err)
		}

		if err = reconcileRefs(ctx, g, headline.ID, forward, backward); err != nil {
			return err
		}

		return g.Attach(ctx, headline)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("updated headline %d", headline.ID)
	h.publish(ctx, queue.HeadlineUpdated, headline.ID, headline.ForwardRefIDs(), headline.BackwardRefIDs())

	return &v1.UpdateHeadlineResponse{
		Headline: toHeadline(headline),
	}, nil
}

// DeleteHeadline detaches every ref of the headline and soft deletes it.
func (h *HeadlineService) DeleteHeadline(ctx context.Context, request *v1.DeleteHeadlineRequest) (*v1.DeleteHeadlineResponse, error) {
	var forward, backward []uint
	err := h.store.Transaction(ctx, func(tx store.Store) error {
		headline, err := tx.GetHeadline(ctx, request.Id)
		if err != nil {
			return notFound(err)
		}

		g := graph.New(tx)
		if forward, err = g.ForwardRefIDs(ctx, headline.ID); err != nil {
			return err
		}
		if backward, err = g.BackwardRefIDs(ctx, headline.ID); err != nil {
			return err
		}

		if err = g.DetachAll(ctx, headline.ID); err != nil {
			return err
		}

		return notFound(tx.DeleteHeadline(ctx, headline.ID))
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("deleted headline %d", request.Id)
	h.publish(ctx, queue.HeadlineDeleted, request.Id, forward, backward)

	return &v1.DeleteHeadlineResponse{}, nil
}

// ParseCategories splits a comma separated filter and keeps the known
// categories, in order and without repeats. It returns nil when nothing
// known is left, meaning no filtering.
func ParseCategories(filter string) []string {
	seen := mapset.NewSet[string]()
	var categories []string
	for _, token := range strings.Split(filter, ",") {
		token = strings.TrimSpace(token)
		if !model.IsCategory(token) || seen.Contains(token) {
			continue
		}
		seen.Add(token)
		categories = append(categories, token)
	}

	return categories
}

// reconcileRefs syncs the supplied directions, forward first. Ids already
// present in the opposite direction at sync time are dropped, so one pair
// never ends up in both directions.
func reconcileRefs(ctx context.Context, g *graph.Graph, id uint, forward, backward mapset.Set[uint]) error {
	if forward != nil {
		current, err := g.BackwardRefIDs(ctx, id)
		if err != nil {
			return err
		}
		if _, err = g.SyncForward(ctx, id, forward.Difference(mapset.NewSet(current...))); err != nil {
			return err
		}
	}

	if backward != nil {
		current, err := g.ForwardRefIDs(ctx, id)
		if err != nil {
			return err
		}
		if _, err = g.SyncBackward(ctx, id, backward.Difference(mapset.NewSet(current...))); err != nil {
			return err
		}
	}

	return nil
}

func overlaps(requested mapset.Set[uint], current []uint) bool {
	if requested == nil {
		return false
	}
	return requested.Intersect(mapset.NewSet(current...)).Cardinality() > 0
}

// publish sends a change after its transaction committed. Failures are
// logged only, the change is already durable.
func (h *HeadlineService) publish(ctx context.Context, kind string, id uint, forward, backward []uint) {
	if h.queue == nil {
		return
	}

	event := queue.NewHeadlineEvent(kind, id, forward, backward)
	if err := h.queue.PublishChange(ctx, event); err != nil {
		logrus.Errorf("error publishing %s for headline %d: %v", kind, id, err)
	}
}
