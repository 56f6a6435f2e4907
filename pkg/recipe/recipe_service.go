package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipebook/domain"
	"recipebook/entities"
	"recipebook/internal/utils"
	"recipebook/internal/utils/mailing"
	"recipebook/internal/utils/storage"
	"recipebook/pkg/user"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter Filter, page, limit int) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID, requesterID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, requesterID, requesterRole string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID, requesterID, requesterRole string) error

		AddFavorite(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, userID, recipeID string) error
		AddToShoppingCart(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error)
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) error
		DownloadShoppingCart(ctx context.Context, userID string) (domain.ShoppingListFile, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		userRepository   user.UserRepository
		storage          storage.Storage
		mailer           mailing.Mailer
		now              func() time.Time
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	userRepository user.UserRepository,
	s3 storage.Storage,
	mailer mailing.Mailer,
) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		userRepository:   userRepository,
		storage:          s3,
		mailer:           mailer,
		now:              time.Now,
	}
}

func shortRecipeResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) buildResponse(recipe *entities.Recipe, favorites, cart, subscribed map[string]bool) domain.RecipeResponse {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		item := domain.RecipeIngredientResponse{
			ID:     row.IngredientID.String(),
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}

	var author domain.UserResponse
	if recipe.Author != nil {
		author = domain.UserResponse{
			ID:           recipe.Author.ID.String(),
			Email:        recipe.Author.Email,
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: subscribed[recipe.Author.ID.String()],
		}
	}

	id := recipe.ID.String()
	return domain.RecipeResponse{
		ID:               id,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorites[id],
		IsInShoppingCart: cart[id],
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

// requesterSets loads the requester's favorite/cart recipe id sets and
// subscribed author id set in one go. Empty requester means anonymous: all
// computed flags stay false.
func (s *recipeService) requesterSets(ctx context.Context, requesterID string) (favorites, cart, subscribed map[string]bool, err error) {
	if requesterID == "" {
		return nil, nil, nil, nil
	}

	favorites, err = s.recipeRepository.GetFavoriteRecipeIDs(ctx, requesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	cart, err = s.recipeRepository.GetCartRecipeIDs(ctx, requesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	subscribed, err = s.userRepository.GetSubscribedAuthorIDs(ctx, requesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	return favorites, cart, subscribed, nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter Filter, page, limit int) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	favorites, cart, subscribed, err := s.requesterSets(ctx, filter.RequesterID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, s.buildResponse(recipe, favorites, cart, subscribed))
	}
	return result, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, requesterID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	favorites, cart, subscribed, err := s.requesterSets(ctx, requesterID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.buildResponse(recipe, favorites, cart, subscribed), nil
}

// resolveTags loads every requested tag and fails when any id is unknown.
func (s *recipeService) resolveTags(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	tags, err := s.recipeRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

// resolveIngredients validates the (id, amount) list: no duplicate
// ingredient references, every id known. Returns the junction rows.
func (s *recipeService) resolveIngredients(ctx context.Context, items []domain.RecipeIngredientRequest) ([]entities.RecipeIngredient, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)
	}

	found, err := s.recipeRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}

	rows := make([]entities.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, entities.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return rows, nil
}

func (s *recipeService) uploadImage(ctx context.Context, data string) (string, error) {
	decoded, ext, err := utils.DecodeImageDataURI(data)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}

	key := fmt.Sprintf("recipes/images/%s.%s", uuid.New().String(), ext)
	return s.storage.UploadImage(ctx, key, decoded, "image/"+ext)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrUserNotFound
		}
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	taken, err := s.recipeRepository.RecipeNameTaken(ctx, req.Name, authorUUID, nil)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if taken {
		return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := entities.Recipe{
		Name:        req.Name,
		AuthorID:    &authorUUID,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		Tags:        tags,
		Ingredients: ingredients,
	}

	if err := s.recipeRepository.CreateRecipe(ctx, &recipe); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		}
		return domain.RecipeResponse{}, err
	}

	s.notifySubscribers(ctx, author, &recipe)

	return s.GetRecipeDetail(ctx, recipe.ID.String(), authorID)
}

// notifySubscribers mails everyone subscribed to the author. Best effort:
// failures are logged and never fail the publish.
func (s *recipeService) notifySubscribers(ctx context.Context, author *entities.User, recipe *entities.Recipe) {
	emails, err := s.userRepository.GetSubscriberEmails(ctx, author.ID.String())
	if err != nil {
		log.Errorf("failed to load subscribers of %s: %v", author.Username, err)
		return
	}

	subject := fmt.Sprintf("New recipe from %s", author.Username)
	body := fmt.Sprintf(
		"<p>%s just published a new recipe: <b>%s</b>.</p>",
		author.FullName(), recipe.Name,
	)
	for _, email := range emails {
		if err := s.mailer.Send(email, subject, body); err != nil {
			log.Errorf("failed to notify %s: %v", email, err)
		}
	}
}

func (s *recipeService) authorizeMutation(recipe *entities.Recipe, requesterID, requesterRole string) error {
	if requesterRole == domain.RoleAdmin {
		return nil
	}
	if recipe.AuthorID != nil && recipe.AuthorID.String() == requesterID {
		return nil
	}
	return domain.ErrUserNotAllowed
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, requesterID, requesterRole string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if err := s.authorizeMutation(recipe, requesterID, requesterRole); err != nil {
		return domain.RecipeResponse{}, err
	}

	if req.Name != nil && *req.Name != recipe.Name && recipe.AuthorID != nil {
		taken, err := s.recipeRepository.RecipeNameTaken(ctx, *req.Name, *recipe.AuthorID, &recipe.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		if taken {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		}
	}

	// The validator's omitempty skips a present-but-empty list, so the
	// explicit empties are rejected here: a recipe always keeps at least
	// one tag and one ingredient.
	var tags []*entities.Tag
	if req.Tags != nil {
		if len(*req.Tags) == 0 {
			return domain.RecipeResponse{}, domain.ErrEmptyTagList
		}
		tags, err = s.resolveTags(ctx, *req.Tags)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var ingredients []entities.RecipeIngredient
	if req.Ingredients != nil {
		if len(*req.Ingredients) == 0 {
			return domain.RecipeResponse{}, domain.ErrEmptyIngredientList
		}
		ingredients, err = s.resolveIngredients(ctx, *req.Ingredients)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}
	if req.Image != nil {
		imageURL, err := s.uploadImage(ctx, *req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, ingredients); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, requesterID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, requesterID, requesterRole string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if err := s.authorizeMutation(recipe, requesterID, requesterRole); err != nil {
		return err
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) getRecipeForToggle(ctx context.Context, userID, recipeID string) (uuid.UUID, *entities.Recipe, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, nil, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil, domain.ErrRecipeNotFound
		}
		return uuid.Nil, nil, err
	}

	return userUUID, recipe, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error) {
	userUUID, recipe, err := s.getRecipeForToggle(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userUUID, recipe.ID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return shortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if _, _, err := s.getRecipeForToggle(ctx, userID, recipeID); err != nil {
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error) {
	userUUID, recipe, err := s.getRecipeForToggle(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddToShoppingCart(ctx, userUUID, recipe.ID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return shortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) error {
	if _, _, err := s.getRecipeForToggle(ctx, userID, recipeID); err != nil {
		return err
	}
	return s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID)
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (domain.ShoppingListFile, error) {
	requester, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShoppingListFile{}, domain.ErrUserNotFound
		}
		return domain.ShoppingListFile{}, err
	}

	totals, err := s.recipeRepository.GetShoppingListTotals(ctx, userID)
	if err != nil {
		return domain.ShoppingListFile{}, err
	}

	names, err := s.recipeRepository.GetCartRecipeNames(ctx, userID)
	if err != nil {
		return domain.ShoppingListFile{}, err
	}

	content := RenderShoppingList(requester.FullName(), s.now(), totals, names)

	return domain.ShoppingListFile{
		Filename: fmt.Sprintf("%s_shopping_list.txt", requester.Username),
		Content:  []byte(content),
	}, nil
}
