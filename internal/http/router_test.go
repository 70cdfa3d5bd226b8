package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func routeSet(router *gin.Engine) map[string]bool {
	routes := make(map[string]bool)
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestNewRouter(t *testing.T) {
	t.Run("registers routes of configured dependencies only", func(t *testing.T) {
		_, repo := setupFavouritesTestDB(t)
		_, signal := setupLanguageRouter(t)

		router := NewRouter(RouterConfig{
			Database:        fakePinger{},
			Lullabies:       &fakeLullabySource{},
			Downloads:       &fakeLullabySource{},
			FavouritesStore: repo,
			Language:        signal,
			TaskQueue:       &fakeTaskQueue{},
			SyncStatus:      fakeSyncStatus{},
			Version:         "test",
		})
		routes := routeSet(router)

		for _, want := range []string{
			"GET /health",
			"GET /api/lullabies",
			"GET /api/lullabies/stream",
			"GET /api/lullabies/favourites",
			"GET /api/lullabies/favourites/stream",
			"GET /api/lullabies/downloaded",
			"GET /api/lullabies/downloaded/stream",
			"GET /api/lullabies/:documentId",
			"POST /api/lullabies/:documentId/favourite",
			"PUT /api/lullabies/:documentId/favourite",
			"POST /api/lullabies/:documentId/download",
			"GET /api/favourites/count",
			"GET /api/language",
			"PUT /api/language",
			"POST /api/sync",
			"GET /api/sync/status",
			"GET /api/tasks/:id",
		} {
			assert.True(t, routes[want], "missing route %s", want)
		}
		assert.False(t, routes["GET /api/stories"])
	})

	t.Run("health only without dependencies", func(t *testing.T) {
		router := NewRouter(RouterConfig{})

		w := doRequest(router, "GET", "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(router, "GET", "/api/lullabies", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
