package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
	"dokan_app_echo/internal/services"
)

type CatalogHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewCatalogHandler(db *gorm.DB, cache *services.RedisCache) *CatalogHandler {
	return &CatalogHandler{db: db, cache: cache}
}

// ListCountries returns the active storefront countries
func (h *CatalogHandler) ListCountries(c echo.Context) error {
	var countries []models.Country
	if err := h.db.Where("is_active = ?", true).Order("name").Find(&countries).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch countries")
	}
	return c.JSON(http.StatusOK, countries)
}

// ListProducts returns the active catalog for a country, paginated
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	page := parsePage(c)
	pageSize := 20

	query := h.db.Model(&models.Product{}).Where("is_active = ?", true)
	if countryID := c.QueryParam("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count products")
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * pageSize

	var products []models.Product
	err := query.Order("name").Limit(pageSize).Offset(offset).Find(&products).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products":     products,
		"total_count":  totalCount,
		"current_page": page,
		"total_pages":  totalPages,
		"page_size":    pageSize,
	})
}

// GetProduct returns one product by slug, with its payment allow-list
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	slug := c.Param("slug")

	var product models.Product
	err := h.db.Preload("Gateways", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}

	return c.JSON(http.StatusOK, product)
}
