// api/handlers/product_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/models"
	"stallpoint/api/store"
)

type ProductHandlers struct {
	Products *store.ProductStore
	AuditLog *store.AdminLogStore
	logger   *zap.SugaredLogger
}

func NewProductHandlers(products *store.ProductStore, auditLog *store.AdminLogStore, logger *zap.SugaredLogger) *ProductHandlers {
	return &ProductHandlers{Products: products, AuditLog: auditLog, logger: logger}
}

func (h *ProductHandlers) ListProducts(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	products, err := h.Products.ListProductsByOwner(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list products", "owner", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.Products.CreateProduct(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Errorw("failed to create product", "owner", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.AuditLog.Record(c.Request.Context(), userID, "product.create", fmt.Sprintf("product %d (%s)", product.ID, product.Title))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.Products.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Errorw("failed to get product", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.Products.UpdateProduct(c.Request.Context(), id, userID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Errorw("failed to update product", "id", id, "owner", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.AuditLog.Record(c.Request.Context(), userID, "product.update", fmt.Sprintf("product %d (%s)", product.ID, product.Title))
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := h.Products.DeleteProduct(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Errorw("failed to delete product", "id", id, "owner", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.AuditLog.Record(c.Request.Context(), userID, "product.delete", fmt.Sprintf("product %d", id))
	c.Status(http.StatusNoContent)
}
