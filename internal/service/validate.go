package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/store"
	"github.com/go-playground/validator/v10"
)

const (
	fieldTitle        = "title"
	fieldCategory     = "category"
	fieldForwardRefs  = "forwardRefs"
	fieldBackwardRefs = "backwardRefs"
)

var headlineValidate *validator.Validate

func init() {
	headlineValidate = validator.New()
	headlineValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	_ = headlineValidate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsCategory(fl.Field().String())
	})
}

// headlineFields are the scalar headline fields after trimming, empty
// strings already turned into nil.
type headlineFields struct {
	Title       *string
	Category    *string
	Description *string
}

type headlineInput struct {
	Title    string `json:"title" validate:"required,max=100"`
	Category string `json:"category" validate:"omitempty,category"`
}

func (f headlineFields) validate(fields FieldErrors) {
	input := headlineInput{}
	if f.Title != nil {
		input.Title = *f.Title
	}
	if f.Category != nil {
		input.Category = *f.Category
	}

	err := headlineValidate.Struct(input)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return
	}

	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			fields.Add(fe.Field(), fmt.Sprintf("The %s field is required.", fe.Field()))
		case "max":
			fields.Add(fe.Field(), fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param()))
		default:
			fields.Add(fe.Field(), fmt.Sprintf("The selected %s is invalid.", fe.Field()))
		}
	}
}

// normalize trims s and turns an empty result into nil.
func normalize(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

// validateRefs checks that every requested ref points at a live headline
// other than self. A nil ids means the field was not supplied and yields a
// nil set.
func validateRefs(ctx context.Context, tx store.Store, self uint, field string, ids *[]uint, fields FieldErrors) (mapset.Set[uint], error) {
	if ids == nil {
		return nil, nil
	}

	requested := mapset.NewSet[uint](*ids...)
	if requested.Cardinality() == 0 {
		return requested, nil
	}

	if self != 0 && requested.Contains(self) {
		fields.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
		return requested, nil
	}

	live, err := tx.ListHeadlinesFromIDs(ctx, requested.ToSlice())
	if err != nil {
		return nil, err
	}

	if len(live) != requested.Cardinality() {
		fields.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
	}

	return requested, nil
}
