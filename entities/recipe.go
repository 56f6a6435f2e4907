package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name        string     `gorm:"uniqueIndex:idx_recipe_name_author" json:"name"`
	AuthorID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recipe_name_author" json:"author_id,omitempty"`
	Text        string     `gorm:"type:text" json:"text"`
	CookingTime int        `json:"cooking_time"`
	ImageURL    string     `json:"image_url,omitempty"`
	PubDate     time.Time  `gorm:"autoCreateTime;index" json:"pub_date"`

	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
	Tags        []*Tag             `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"-"`
	Timestamp
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recipe_ingredient_pair" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recipe_ingredient_pair" json:"ingredient_id"`
	Amount       int       `json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

type Favorite struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_pair" json:"recipe_id"`

	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"-"`
	Timestamp
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type ShoppingCart struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shopping_cart_pair" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shopping_cart_pair" json:"recipe_id"`

	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"-"`
	Timestamp
}

func (sc *ShoppingCart) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	return nil
}
