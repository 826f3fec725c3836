package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 25
	MaxPageLimit     = 100
)

type Pagination struct {
	Page  int
	Limit int
	Skip  int
}

type PageLink struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageLinks is the pagination block of a list response.
type PageLinks struct {
	Next *PageLink `json:"next,omitempty"`
	Prev *PageLink `json:"prev,omitempty"`
}

func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Pagination{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

func GetPagination(c *gin.Context) Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	return NewPagination(page, limit)
}

// Links reports the neighbouring pages given the total number of rows.
func (p Pagination) Links(total int64) PageLinks {
	var links PageLinks
	if int64(p.Skip+p.Limit) < total {
		links.Next = &PageLink{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Skip > 0 {
		links.Prev = &PageLink{Page: p.Page - 1, Limit: p.Limit}
	}
	return links
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
