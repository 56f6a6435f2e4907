package recipe

import (
	"gorm.io/gorm"
)

// Filter narrows a recipe listing. Zero values are no-ops; the categories
// compose with AND, tag slugs compose with OR. FavoritedOnly and InCartOnly
// are bound to the requesting user and silently ignored when RequesterID is
// empty (anonymous requester).
type Filter struct {
	AuthorID      string
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
	RequesterID   string
}

func (f Filter) byAuthor(db *gorm.DB) *gorm.DB {
	if f.AuthorID == "" {
		return db
	}
	return db.Where("recipes.author_id = ?", f.AuthorID)
}

func (f Filter) byTagSlugs(db *gorm.DB) *gorm.DB {
	if len(f.TagSlugs) == 0 {
		return db
	}
	return db.Where(
		"recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags"+
			" JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
		f.TagSlugs,
	)
}

func (f Filter) byFavorited(db *gorm.DB) *gorm.DB {
	if !f.FavoritedOnly || f.RequesterID == "" {
		return db
	}
	return db.Where(
		"recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)",
		f.RequesterID,
	)
}

func (f Filter) byInCart(db *gorm.DB) *gorm.DB {
	if !f.InCartOnly || f.RequesterID == "" {
		return db
	}
	return db.Where(
		"recipes.id IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)",
		f.RequesterID,
	)
}

func (f Filter) Scopes() []func(*gorm.DB) *gorm.DB {
	return []func(*gorm.DB) *gorm.DB{
		f.byAuthor,
		f.byTagSlugs,
		f.byFavorited,
		f.byInCart,
	}
}
