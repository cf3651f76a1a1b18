// api/handlers/favorite_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/models"
	"stallpoint/api/store"
)

type FavoriteHandlers struct {
	Favorites *store.FavoriteStore
	Products  *store.ProductStore
	logger    *zap.SugaredLogger
}

func NewFavoriteHandlers(favorites *store.FavoriteStore, products *store.ProductStore, logger *zap.SugaredLogger) *FavoriteHandlers {
	return &FavoriteHandlers{Favorites: favorites, Products: products, logger: logger}
}

func (h *FavoriteHandlers) ListFavorites(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	favorites, err := h.Favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list favorites", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, favorites)
}

func (h *FavoriteHandlers) AddFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req models.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// The product must exist before it can be favorited.
	if _, err := h.Products.GetProduct(c.Request.Context(), req.ProductID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Errorw("failed to check product", "product", req.ProductID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	if err := h.Favorites.AddFavorite(c.Request.Context(), userID, req.ProductID); err != nil {
		h.logger.Errorw("failed to add favorite", "user", userID, "product", req.ProductID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Favorite added"})
}

func (h *FavoriteHandlers) RemoveFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	productID, err := strconv.Atoi(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := h.Favorites.RemoveFavorite(c.Request.Context(), userID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
			return
		}
		h.logger.Errorw("failed to remove favorite", "user", userID, "product", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}
