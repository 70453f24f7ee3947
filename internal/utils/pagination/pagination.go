package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Pagination struct {
	Page  int
	Limit int
}

// ParseFromRequest reads page and limit query parameters from a Fiber
// context, falling back to the first page of ten.
func ParseFromRequest(c *fiber.Ctx) Pagination {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return Pagination{Page: page, Limit: limit}
}

// Response wraps a page of data with its paging metadata. Merged
// cross-partition pages report has_more instead of a total count.
func Response(p Pagination, hasMore bool, data interface{}) fiber.Map {
	return fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"current_page": p.Page,
			"per_page":     p.Limit,
			"has_more":     hasMore,
		},
	}
}
