package domain

import (
	"errors"
)

var (
	MessageSuccessGetTags      = "success get tags"
	MessageSuccessGetTagDetail = "success get tag detail"

	MessageFailedGetTags      = "failed to get tags"
	MessageFailedGetTagDetail = "failed to get tag detail"

	ErrTagNotFound = errors.New("tag not found")
)

type (
	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	// TagSeedRow is one row of the tag seed dataset.
	TagSeedRow struct {
		Name  string `validate:"required"`
		Color string `validate:"required,hexcolor"`
		Slug  string `validate:"required"`
	}

	IngredientSeedRow struct {
		Name            string `validate:"required"`
		MeasurementUnit string `validate:"required"`
	}
)
