package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultLimit   int
		expectedLimit  int
		expectedOffset int
	}{
		{"Defaults", "", 20, 20, 0},
		{"Explicit", "limit=5&offset=10", 20, 5, 10},
		{"Negative Limit", "limit=-3", 20, 20, 0},
		{"Capped Limit", "limit=5000", 20, 100, 0},
		{"Negative Offset", "offset=-1", 20, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/test", func(c *fiber.Ctx) error {
				got = parsePagination(c, tt.defaultLimit)
				return c.SendStatus(fiber.StatusOK)
			})

			path := "/test"
			if tt.query != "" {
				path += "?" + tt.query
			}
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			assert.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tt.expectedLimit, got.Limit)
			assert.Equal(t, tt.expectedOffset, got.Offset)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"other", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanizeParam(tt.param))
	}
}

func TestCurrentUserID(t *testing.T) {
	app := fiber.New()
	var got uint
	app.Get("/anon", func(c *fiber.Ctx) error {
		got = currentUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, uint(0), got, "anonymous requests have no user ID")
}
