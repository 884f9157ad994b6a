// Package v1 holds the wire types of the headline API.
package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// HeadlineServiceServer is the API served over HTTP.
type HeadlineServiceServer interface {
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	ListHeadlines(context.Context, *ListHeadlinesRequest) (*ListHeadlinesResponse, error)
	GetHeadline(context.Context, *GetHeadlineRequest) (*GetHeadlineResponse, error)
	CreateHeadline(context.Context, *CreateHeadlineRequest) (*CreateHeadlineResponse, error)
	UpdateHeadline(context.Context, *UpdateHeadlineRequest) (*UpdateHeadlineResponse, error)
	DeleteHeadline(context.Context, *DeleteHeadlineRequest) (*DeleteHeadlineResponse, error)
}

// Headline is a headline with its refs resolved.
type Headline struct {
	Id           uint           `json:"id"`
	Title        string         `json:"title"`
	Category     *string        `json:"category"`
	Description  *string        `json:"description"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ForwardRefs  []*HeadlineRef `json:"forward_refs"`
	BackwardRefs []*HeadlineRef `json:"backward_refs"`
}

// HeadlineRef is the headline on the other end of a ref.
type HeadlineRef struct {
	Id          uint      `json:"id"`
	Title       string    `json:"title"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type ListHeadlinesRequest struct {
	// Categories is a comma separated category filter.
	Categories string `json:"categories,omitempty"`
}

type ListHeadlinesResponse struct {
	Headlines []*Headline `json:"headlines"`
}

type GetHeadlineRequest struct {
	Id uint `json:"id"`
}

type GetHeadlineResponse struct {
	Headline *Headline `json:"headline"`
}

type CreateHeadlineRequest struct {
	Title        *string        `json:"title"`
	Category     OptionalString `json:"category"`
	Description  OptionalString `json:"description"`
	ForwardRefs  *[]uint        `json:"forwardRefs"`
	BackwardRefs *[]uint        `json:"backwardRefs"`
}

type CreateHeadlineResponse struct {
	Headline *Headline `json:"headline"`
}

type UpdateHeadlineRequest struct {
	Id           uint           `json:"-"`
	Title        *string        `json:"title"`
	Category     OptionalString `json:"category"`
	Description  OptionalString `json:"description"`
	ForwardRefs  *[]uint        `json:"forwardRefs"`
	BackwardRefs *[]uint        `json:"backwardRefs"`
}

type UpdateHeadlineResponse struct {
	Headline *Headline `json:"headline"`
}

type DeleteHeadlineRequest struct {
	Id uint `json:"id"`
}

type DeleteHeadlineResponse struct{}

// OptionalString tells an absent key apart from an explicit null.
// Set is true whenever the key was present in the decoded object.
type OptionalString struct {
	Set   bool
	Value *string
}

// NewOptionalString returns a present value, nil meaning null.
func NewOptionalString(value *string) OptionalString {
	return OptionalString{Set: true, Value: value}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value

	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
