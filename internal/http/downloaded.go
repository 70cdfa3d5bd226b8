package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DownloadedController lists content that can be played offline.
type DownloadedController[T any] struct {
	resource string
	source   DownloadedSource[T]
}

func NewDownloadedController[T any](resource string, source DownloadedSource[T]) *DownloadedController[T] {
	return &DownloadedController[T]{resource: resource, source: source}
}

// List handles GET /api/lullabies/downloaded
func (dc *DownloadedController[T]) List(c *gin.Context) {
	items, err := dc.source.Downloaded(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list "+dc.resource)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: nonNil(items), Total: len(items)})
}

// Stream handles GET /api/lullabies/downloaded/stream
// A new snapshot is pushed whenever a download completes.
func (dc *DownloadedController[T]) Stream(c *gin.Context) {
	streamSnapshots(c, dc.source.ObserveDownloaded(c.Request.Context()))
}
