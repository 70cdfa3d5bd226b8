package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lullabies/internal/language"
)

type LanguageController struct {
	store LanguageStore
}

func NewLanguageController(store LanguageStore) *LanguageController {
	return &LanguageController{store: store}
}

type LanguageResponse struct {
	Language string `json:"language"`
}

type SetLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// GetLanguage handles GET /api/language
func (lc *LanguageController) GetLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, LanguageResponse{Language: lc.store.Current()})
}

// SetLanguage handles PUT /api/language
// Open streams switch to the new language.
func (lc *LanguageController) SetLanguage(c *gin.Context) {
	var req SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "language is required")
		return
	}

	code, err := lc.store.Set(c.Request.Context(), req.Language)
	if err != nil {
		if errors.Is(err, language.ErrInvalidLanguage) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "set language")
		return
	}

	c.JSON(http.StatusOK, LanguageResponse{Language: code})
}
