package service

import (
	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/emrgen/headline/internal/model"
)

func toHeadlines(headlines []*model.Headline) []*v1.Headline {
	out := make([]*v1.Headline, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, toHeadline(h))
	}
	return out
}

func toHeadline(h *model.Headline) *v1.Headline {
	return &v1.Headline{
		Id:           h.ID,
		Title:        h.Title,
		Category:     h.Category,
		Description:  h.Description,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
		ForwardRefs:  toHeadlineRefs(h.ForwardRefs),
		BackwardRefs: toHeadlineRefs(h.BackwardRefs),
	}
}

func toHeadlineRefs(headlines []*model.Headline) []*v1.HeadlineRef {
	out := make([]*v1.HeadlineRef, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, &v1.HeadlineRef{
			Id:          h.ID,
			Title:       h.Title,
			Category:    h.Category,
			Description: h.Description,
			CreatedAt:   h.CreatedAt,
			UpdatedAt:   h.UpdatedAt,
		})
	}
	return out
}
