package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseEventItems is the event name of every snapshot pushed on a stream.
const sseEventItems = "items"

// ContentController serves one content family. Lists are localized to the
// current app language.
type ContentController[T any] struct {
	resource string
	source   ContentSource[T]
}

func NewContentController[T any](resource string, source ContentSource[T]) *ContentController[T] {
	return &ContentController[T]{resource: resource, source: source}
}

// List handles GET /api/{family}
func (cc *ContentController[T]) List(c *gin.Context) {
	items, err := cc.source.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list "+cc.resource)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: nonNil(items), Total: len(items)})
}

// ListFavourites handles GET /api/{family}/favourites
// Most recently favourited first.
func (cc *ContentController[T]) ListFavourites(c *gin.Context) {
	items, err := cc.source.Favourites(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list favourite "+cc.resource)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: nonNil(items), Total: len(items)})
}

// Get handles GET /api/{family}/:documentId
func (cc *ContentController[T]) Get(c *gin.Context) {
	id, ok := parseDocumentIDParam(c, "documentId")
	if !ok {
		return
	}
	item, err := cc.source.Get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get "+cc.resource)
		return
	}
	if item == nil {
		respondNotFound(c, cc.resource)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Stream handles GET /api/{family}/stream
// Pushes the cached snapshot at once, refreshes in the background when the
// cache is stale, and pushes a new snapshot on every change.
func (cc *ContentController[T]) Stream(c *gin.Context) {
	streamSnapshots(c, cc.source.Sync(c.Request.Context()))
}

// StreamFavourites handles GET /api/{family}/favourites/stream
func (cc *ContentController[T]) StreamFavourites(c *gin.Context) {
	streamSnapshots(c, cc.source.ObserveFavourites(c.Request.Context()))
}

// streamSnapshots writes server-sent events until the client leaves or the
// stream ends. The channel must be bound to the request context.
func streamSnapshots[T any](c *gin.Context, snapshots <-chan []T) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case items, ok := <-snapshots:
			if !ok {
				return
			}
			c.SSEvent(sseEventItems, nonNil(items))
			c.Writer.Flush()
		}
	}
}

// nonNil keeps empty lists encoded as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
