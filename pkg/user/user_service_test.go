package user

import (
	"context"
	"testing"

	"recipebook/domain"
	"recipebook/entities"
	"recipebook/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	))
	return db
}

func setupService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	return NewUserService(NewUserRepository(db), jwt.NewJWTService()), db
}

func registerRequest(username string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  username,
		Password:  "secret-password",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupService(t)

	registered, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)

	res, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, registered.ID, res.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)

	req := registerRequest("alice2")
	req.Email = "alice@example.com"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyUsed)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)

	req := registerRequest("alice")
	req.Email = "other@example.com"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyUsed)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestSubscribe(t *testing.T) {
	svc, db := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	bob, err := svc.Register(context.Background(), registerRequest("bob"))
	require.NoError(t, err)

	res, err := svc.Subscribe(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Username)
	assert.True(t, res.IsSubscribed)
	assert.Zero(t, res.RecipesCount)

	var count int64
	require.NoError(t, db.Model(&entities.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscribeToSelf(t *testing.T) {
	svc, _ := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
}

func TestSubscribeTwice(t *testing.T) {
	svc, _ := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	bob, err := svc.Register(context.Background(), registerRequest("bob"))
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestUnsubscribeNotSubscribed(t *testing.T) {
	svc, _ := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	bob, err := svc.Register(context.Background(), registerRequest("bob"))
	require.NoError(t, err)

	err = svc.Unsubscribe(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestUnsubscribeUnknownAuthor(t *testing.T) {
	svc, _ := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)

	err = svc.Unsubscribe(context.Background(), alice.ID, "3f6b1bdc-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetSubscriptionsIncludesRecipes(t *testing.T) {
	svc, db := setupService(t)

	alice, err := svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	bob, err := svc.Register(context.Background(), registerRequest("bob"))
	require.NoError(t, err)

	var bobEntity entities.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bobEntity).Error)
	require.NoError(t, db.Create(&entities.Recipe{
		Name:        "Bread",
		AuthorID:    &bobEntity.ID,
		Text:        "text",
		CookingTime: 45,
	}).Error)

	_, err = svc.Subscribe(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	subscriptions, count, err := svc.GetSubscriptions(context.Background(), alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, subscriptions, 1)
	assert.Equal(t, "bob", subscriptions[0].Username)
	assert.EqualValues(t, 1, subscriptions[0].RecipesCount)
	require.Len(t, subscriptions[0].Recipes, 1)
	assert.Equal(t, "Bread", subscriptions[0].Recipes[0].Name)
}
