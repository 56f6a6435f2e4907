package handlers

import (
	"strconv"

	"recipebook/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// pagination reads page/limit query params, falling back to the configured
// page size and capping limit at the configured maximum.
func pagination(c *fiber.Ctx) (page, limit int) {
	defaultLimit := utils.GetConfigInt("PAGE_SIZE", 6)
	maxLimit := utils.GetConfigInt("MAX_PAGE_SIZE", 100)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}
