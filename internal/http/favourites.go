package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lullabies/internal/entities"
)

type FavouritesController struct {
	store FavouritesStore
}

func NewFavouritesController(store FavouritesStore) *FavouritesController {
	return &FavouritesController{store: store}
}

type FavouriteResponse struct {
	DocumentID  string            `json:"document_id"`
	ItemType    entities.ItemType `json:"item_type"`
	IsFavourite bool              `json:"is_favourite"`
}

type SetFavouriteRequest struct {
	IsFavourite *bool `json:"is_favourite" binding:"required"`
}

// Toggle flips the favourite flag of an item.
// POST /api/{family}/:documentId/favourite
func (fc *FavouritesController) Toggle(itemType entities.ItemType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseDocumentIDParam(c, "documentId")
		if !ok {
			return
		}

		isFavourite, err := fc.store.Toggle(c.Request.Context(), id, itemType)
		if err != nil {
			fc.respondStoreError(c, err, itemType)
			return
		}

		c.JSON(http.StatusOK, FavouriteResponse{DocumentID: id, ItemType: itemType, IsFavourite: isFavourite})
	}
}

// Set forces the favourite flag of an item.
// PUT /api/{family}/:documentId/favourite
func (fc *FavouritesController) Set(itemType entities.ItemType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseDocumentIDParam(c, "documentId")
		if !ok {
			return
		}

		var req SetFavouriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "is_favourite is required")
			return
		}

		if err := fc.store.SetFavourite(c.Request.Context(), id, itemType, *req.IsFavourite); err != nil {
			fc.respondStoreError(c, err, itemType)
			return
		}

		c.JSON(http.StatusOK, FavouriteResponse{DocumentID: id, ItemType: itemType, IsFavourite: *req.IsFavourite})
	}
}

// GetFavouriteCount returns the number of favourites, optionally of one type.
// GET /api/favourites/count?type=lullaby
func (fc *FavouritesController) GetFavouriteCount(c *gin.Context) {
	itemType, ok := parseItemType(c, c.Query("type"), true)
	if !ok {
		return
	}

	count, err := fc.store.GetFavouriteCount(c.Request.Context(), itemType)
	if err != nil {
		respondInternalError(c, err, "get favourite count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (fc *FavouritesController) respondStoreError(c *gin.Context, err error, itemType entities.ItemType) {
	if errors.Is(err, entities.ErrNotFound) {
		respondNotFound(c, string(itemType))
		return
	}
	respondInternalError(c, err, "favourite "+string(itemType))
}
