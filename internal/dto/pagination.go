package dto

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// ParsePagination reads page and page_size. Missing, malformed or out of range
// values fall back to page 1 and DefaultPageSize; page_size is capped at
// MaxPageSize and page so that the offset cannot overflow.
func ParsePagination(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", DefaultPageSize)
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if maxPage := math.MaxInt32/size + 1; page > maxPage {
		page = maxPage
	}
	return PaginationParams{Page: page, PageSize: size, Offset: (page - 1) * size}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func NewPagination(page, pageSize, totalItems int) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, TotalItems: totalItems}
	if pageSize > 0 {
		p.TotalPages = (totalItems + pageSize - 1) / pageSize
	}
	return p
}
