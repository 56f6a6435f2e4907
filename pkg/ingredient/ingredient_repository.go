package ingredient

import (
	"context"

	"recipebook/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	IngredientRepository interface {
		SearchIngredients(ctx context.Context, query string) ([]*entities.Ingredient, error)
		GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error)
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// SearchIngredients matches the query case-insensitively anywhere in the
// name, ranking prefix matches ahead of mid-name matches and sorting each
// tier by lowercased name. An empty query returns the full name-sorted list.
func (r *ingredientRepository) SearchIngredients(ctx context.Context, query string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient

	// Order must be attached as a clause: Order() only accepts plain
	// strings and drops expression arguments.
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE '%' || LOWER(?) || '%'", query).
		Clauses(clause.OrderBy{Expression: gorm.Expr(
			"CASE WHEN LOWER(name) LIKE LOWER(?) || '%' THEN 0 ELSE 1 END, LOWER(name)",
			query,
		)}).
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}

	return ingredients, nil
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}
