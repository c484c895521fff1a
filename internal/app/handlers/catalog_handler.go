package handlers

import (
	"context"
	"net/http"
	"time"

	appContext "github.com/smmboost/panel/internal/app/context"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service"
)

type (
	CatalogHandler struct {
		catalogService service.CatalogService
		contextTimeout time.Duration
	}

	ServiceDTO struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		PricePer1000 int64  `json:"price_per_1000"`
		MinOrder     int64  `json:"min_order"`
		MaxOrder     int64  `json:"max_order"`
	}
)

func NewCatalogHandler(contextTimeoutSec int, catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		contextTimeout: time.Duration(contextTimeoutSec) * time.Second,
	}
}

// GetServices godoc
// @Summary List orderable services
// @Description Public catalog of SMM services with prices in paise per 1000 units.
// Optionally filtered by the `category` query parameter. Served from a short-lived
// cache; a refresh can be forced with `refresh=1`.
// @Tags catalog
// @Produce json
// @Param category query string false "Category filter"
// @Param refresh query string false "Force a catalog refresh"
// @Success 200 {array} ServiceDTO "Catalog"
// @Failure 503 {object} ErrorResponse "Catalog unavailable"
// @Router /api/panel/services [get]
func (ch *CatalogHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ch.contextTimeout)
	defer cancel()

	var services []models.Service
	var err error
	if r.URL.Query().Get("refresh") == "1" {
		services, err = ch.catalogService.Refresh(ctx)
	} else {
		services, err = ch.catalogService.Services(ctx)
	}
	if err != nil {
		PrepareError(w, err)
		return
	}

	category := models.Category(r.URL.Query().Get("category"))
	response := make([]ServiceDTO, 0, len(services))
	for _, svc := range services {
		if category != "" && svc.Category != category {
			continue
		}
		response = append(response, ServiceDTO{
			ID:           svc.ID,
			Name:         svc.Name,
			Description:  svc.Description,
			Category:     svc.Category.String(),
			PricePer1000: svc.PricePer1000,
			MinOrder:     svc.MinOrder,
			MaxOrder:     svc.MaxOrder,
		})
	}

	err = appContext.GetContextError(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
