package ingredient

import (
	"context"
	"testing"

	"recipebook/entities"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, db.Create(&entities.Ingredient{
			Name:            name,
			MeasurementUnit: "g",
		}).Error)
	}
}

func names(ingredients []*entities.Ingredient) []string {
	result := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		result = append(result, ingredient.Name)
	}
	return result
}

func TestSearchIngredientsPrefixFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	seedIngredients(t, db, "Butter", "Cornflour", "Flour", "flaxseed")

	found, err := repo.SearchIngredients(context.Background(), "fl")
	require.NoError(t, err)

	// Prefix matches sort ahead of substring matches, each tier
	// alphabetically, case-insensitive.
	assert.Equal(t, []string{"flaxseed", "Flour", "Cornflour"}, names(found))
}

func TestSearchIngredientsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	seedIngredients(t, db, "Flour")

	found, err := repo.SearchIngredients(context.Background(), "FLO")
	require.NoError(t, err)
	assert.Equal(t, []string{"Flour"}, names(found))
}

func TestSearchIngredientsEmptyQueryReturnsAllSorted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	seedIngredients(t, db, "Flour", "Butter", "Cornflour")

	found, err := repo.SearchIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Butter", "Cornflour", "Flour"}, names(found))
}

func TestSearchIngredientsNoMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	seedIngredients(t, db, "Flour")

	found, err := repo.SearchIngredients(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Empty(t, found)
}
