package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	MessageSuccessGetRecipes           = "success get recipes"
	MessageSuccessGetRecipeDetail      = "success get recipe detail"
	MessageSuccessCreateRecipe         = "recipe created successfully"
	MessageSuccessUpdateRecipe         = "recipe updated successfully"
	MessageSuccessDeleteRecipe         = "recipe deleted successfully"
	MessageSuccessAddFavorite          = "recipe added to favorites"
	MessageSuccessRemoveFavorite       = "recipe removed from favorites"
	MessageSuccessAddToShoppingCart    = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart       = "recipe removed from shopping cart"
	MessageSuccessDownloadShoppingList = "shopping list downloaded"

	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedAddFavorite          = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite       = "failed to remove recipe from favorites"
	MessageFailedAddToShoppingCart    = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart       = "failed to remove recipe from shopping cart"
	MessageFailedDownloadShoppingList = "failed to download shopping list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrRecipeAlreadyExists   = errors.New("recipe with this name already exists for this author")
	ErrDuplicateIngredient   = errors.New("duplicate ingredient in recipe")
	ErrEmptyTagList          = errors.New("tags must contain at least one id")
	ErrEmptyIngredientList   = errors.New("ingredients must contain at least one item")
	ErrInvalidImagePayload   = errors.New("image must be a base64 data URI")
	ErrAlreadyFavorited      = errors.New("recipe already in favorites")
	ErrNotFavorited          = errors.New("recipe not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe already in shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe not in shopping cart")
)

type (
	RecipeIngredientRequest struct {
		ID     uuid.UUID `json:"id" validate:"required"`
		Amount int       `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Image       string                    `json:"image" validate:"required"`
		Tags        []uuid.UUID               `json:"tags" validate:"required,min=1"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	// UpdateRecipeRequest carries only the fields present in the request;
	// nil pointers leave the stored value untouched.
	UpdateRecipeRequest struct {
		Name        *string                    `json:"name" validate:"omitempty"`
		Text        *string                    `json:"text" validate:"omitempty"`
		CookingTime *int                       `json:"cooking_time" validate:"omitempty,min=1"`
		Image       *string                    `json:"image" validate:"omitempty"`
		Tags        *[]uuid.UUID               `json:"tags" validate:"omitempty,min=1"`
		Ingredients *[]RecipeIngredientRequest `json:"ingredients" validate:"omitempty,min=1,dive"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	ShortRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShoppingListFile struct {
		Filename string
		Content  []byte
	}
)
