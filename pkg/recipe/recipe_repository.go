package recipe

import (
	"context"

	"recipebook/domain"
	"recipebook/entities"
	"recipebook/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// IngredientTotal is one aggregated shopping-list line.
	IngredientTotal struct {
		Name            string
		MeasurementUnit string
		Total           int
	}

	RecipeRepository interface {
		GetRecipes(ctx context.Context, filter Filter, page, limit int) ([]*entities.Recipe, int64, error)
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		RecipeNameTaken(ctx context.Context, name string, authorID uuid.UUID, excludeID *uuid.UUID) (bool, error)
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, ingredients []entities.RecipeIngredient) error
		DeleteRecipe(ctx context.Context, id string) error

		GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error)
		GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error)

		AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) error
		GetFavoriteRecipeIDs(ctx context.Context, userID string) (map[string]bool, error)

		AddToShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) error
		GetCartRecipeIDs(ctx context.Context, userID string) (map[string]bool, error)

		GetShoppingListTotals(ctx context.Context, userID string) ([]IngredientTotal, error)
		GetCartRecipeNames(ctx context.Context, userID string) ([]string, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter Filter, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Scopes(filter.Scopes()...).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.withAssociations(ctx).
		Scopes(filter.Scopes()...).
		Offset(offset).
		Limit(limit).
		Order("pub_date desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.withAssociations(ctx).Where("recipes.id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) RecipeNameTaken(ctx context.Context, name string, authorID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("name = ? AND author_id = ?", name, authorID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRecipe persists the recipe together with its tag associations and
// ingredient rows. GORM runs the associated inserts inside one transaction,
// so a failing ingredient row rolls the recipe back too.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// UpdateRecipe saves changed scalar fields and, when a replacement set is
// supplied (non-nil), swaps the full tag association and recreates the
// ingredient rows, all inside a single transaction.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, ingredients []entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Save(recipe).Error; err != nil {
			return err
		}

		if tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}

		if ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteRecipe removes the recipe and everything referencing it: ingredient
// rows, tag links, favorites and shopping cart entries.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *recipeRepository) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	favorite := entities.Favorite{UserID: userID, RecipeID: recipeID}
	return utils.CreatePair(ctx, r.db, &favorite, domain.ErrAlreadyFavorited)
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	return utils.DeletePair[entities.Favorite](ctx, r.db, map[string]any{
		"user_id":   userID,
		"recipe_id": recipeID,
	}, domain.ErrNotFavorited)
}

func (r *recipeRepository) GetFavoriteRecipeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	return r.pairRecipeIDs(ctx, &entities.Favorite{}, userID)
}

func (r *recipeRepository) AddToShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	entry := entities.ShoppingCart{UserID: userID, RecipeID: recipeID}
	return utils.CreatePair(ctx, r.db, &entry, domain.ErrAlreadyInShoppingCart)
}

func (r *recipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) error {
	return utils.DeletePair[entities.ShoppingCart](ctx, r.db, map[string]any{
		"user_id":   userID,
		"recipe_id": recipeID,
	}, domain.ErrNotInShoppingCart)
}

func (r *recipeRepository) GetCartRecipeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	return r.pairRecipeIDs(ctx, &entities.ShoppingCart{}, userID)
}

func (r *recipeRepository) pairRecipeIDs(ctx context.Context, model any, userID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// GetShoppingListTotals sums ingredient amounts across every recipe in the
// user's shopping cart, grouped by ingredient name and unit.
func (r *recipeRepository) GetShoppingListTotals(ctx context.Context, userID string) ([]IngredientTotal, error) {
	var totals []IngredientTotal
	err := r.db.WithContext(ctx).Raw(
		"SELECT ingredients.name AS name,"+
			" ingredients.measurement_unit AS measurement_unit,"+
			" SUM(recipe_ingredients.amount) AS total"+
			" FROM recipe_ingredients"+
			" JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id"+
			" JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id"+
			" WHERE shopping_carts.user_id = ?"+
			" GROUP BY ingredients.name, ingredients.measurement_unit"+
			" ORDER BY ingredients.name",
		userID,
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *recipeRepository) GetCartRecipeNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Joins("JOIN recipes ON recipes.id = shopping_carts.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("recipes.name").
		Pluck("recipes.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
