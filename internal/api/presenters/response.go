package presenters

import (
	"errors"

	"recipebook/domain"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data any, status int, message string) error {
	return c.Status(status).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return c.Status(status).JSON(res)
}

var (
	conflictErrors = []error{
		domain.ErrEmailAlreadyUsed,
		domain.ErrUsernameAlreadyUsed,
		domain.ErrAlreadySubscribed,
		domain.ErrRecipeAlreadyExists,
		domain.ErrAlreadyFavorited,
		domain.ErrAlreadyInShoppingCart,
	}
	notFoundErrors = []error{
		domain.ErrUserNotFound,
		domain.ErrTagNotFound,
		domain.ErrIngredientNotFound,
		domain.ErrRecipeNotFound,
		domain.ErrNotSubscribed,
		domain.ErrNotFavorited,
		domain.ErrNotInShoppingCart,
	}
)

// statusOf maps a service error onto an HTTP status. Anything unrecognized
// counts as a bad request so internals never leak as 500s for domain errors.
func statusOf(err error) int {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return fiber.StatusConflict
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return fiber.StatusNotFound
		}
	}
	if errors.Is(err, domain.ErrUserNotAllowed) {
		return fiber.StatusForbidden
	}
	return fiber.StatusBadRequest
}

// DomainErrorResponse picks the status from the error itself.
func DomainErrorResponse(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, statusOf(err), message, err)
}
