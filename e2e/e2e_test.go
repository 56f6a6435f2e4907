package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipebook/entities"
	"recipebook/internal/api/handlers"
	"recipebook/internal/api/routes"
	"recipebook/internal/middleware"
	"recipebook/internal/utils"
	"recipebook/pkg/ingredient"
	"recipebook/pkg/jwt"
	"recipebook/pkg/recipe"
	"recipebook/pkg/tag"
	"recipebook/pkg/user"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct{}

func (fakeStorage) UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type fakeMailer struct{}

func (fakeMailer) Send(toEmail, subject, body string) error { return nil }

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	))

	utils.InitValidator()

	userRepository := user.NewUserRepository(db)
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	tagService := tag.NewTagService(tag.NewTagRepository(db))
	ingredientService := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	recipeService := recipe.NewRecipeService(
		recipe.NewRecipeRepository(db),
		userRepository,
		fakeStorage{},
		fakeMailer{},
	)

	app := fiber.New()
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       handlers.NewUserHandler(userService, utils.Validate),
		TagHandler:        handlers.NewTagHandler(tagService),
		IngredientHandler: handlers.NewIngredientHandler(ingredientService),
		RecipeHandler:     handlers.NewRecipeHandler(recipeService, utils.Validate),
		Middleware:        middleware.NewMiddleware(),
		JWTService:        jwtService,
	}
	routesConfig.Setup()

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeData(t *testing.T, res *http.Response, out any) {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	res := doJSON(t, app, fiber.MethodPost, "/api/v1/users/register", "", fiber.Map{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  username,
		"password":   "secret-password",
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	res = doJSON(t, app, fiber.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    username + "@example.com",
		"password": "secret-password",
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, res, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestRecipeLifecycle(t *testing.T) {
	app, db := setupApp(t)

	aliceToken := registerAndLogin(t, app, "alice")
	bobToken := registerAndLogin(t, app, "bob")

	breakfast := entities.Tag{Name: "Breakfast", Color: "#49B64E", Slug: "breakfast"}
	require.NoError(t, db.Create(&breakfast).Error)
	flour := entities.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&flour).Error)

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("img"))
	res := doJSON(t, app, fiber.MethodPost, "/api/v1/recipes", aliceToken, fiber.Map{
		"name":         "Bread",
		"text":         "Mix and bake.",
		"cooking_time": 45,
		"image":        image,
		"tags":         []string{breakfast.ID.String()},
		"ingredients": []fiber.Map{
			{"id": flour.ID.String(), "amount": 200},
		},
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, res, &created)
	require.NotEmpty(t, created.ID)

	// Anonymous listing works and carries the recipe.
	res = doJSON(t, app, fiber.MethodGet, "/api/v1/recipes", "", nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	// Bob puts the recipe in his cart; doing it twice conflicts.
	res = doJSON(t, app, fiber.MethodPost, "/api/v1/recipes/"+created.ID+"/shopping_cart", bobToken, nil)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	res = doJSON(t, app, fiber.MethodPost, "/api/v1/recipes/"+created.ID+"/shopping_cart", bobToken, nil)
	require.Equal(t, fiber.StatusConflict, res.StatusCode)

	res = doJSON(t, app, fiber.MethodGet, "/api/v1/recipes/download_shopping_cart", bobToken, nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get(fiber.HeaderContentDisposition), "bob_shopping_list.txt")

	content, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Flour: 200 g.")
	assert.Contains(t, string(content), "Bread")
}

func TestSubscriptionFlow(t *testing.T) {
	app, db := setupApp(t)

	aliceToken := registerAndLogin(t, app, "alice")
	registerAndLogin(t, app, "bob")

	var bob entities.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bob).Error)

	res := doJSON(t, app, fiber.MethodPost, "/api/v1/users/"+bob.ID.String()+"/subscribe", aliceToken, nil)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	res = doJSON(t, app, fiber.MethodPost, "/api/v1/users/"+bob.ID.String()+"/subscribe", aliceToken, nil)
	require.Equal(t, fiber.StatusConflict, res.StatusCode)

	res = doJSON(t, app, fiber.MethodDelete, "/api/v1/users/"+bob.ID.String()+"/subscribe", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	res = doJSON(t, app, fiber.MethodDelete, "/api/v1/users/"+bob.ID.String()+"/subscribe", aliceToken, nil)
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupApp(t)

	res := doJSON(t, app, fiber.MethodPost, "/api/v1/recipes", "", fiber.Map{})
	require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
