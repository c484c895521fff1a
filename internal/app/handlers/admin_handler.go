package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service"
)

type (
	AdminHandler struct {
		adminService   service.AdminService
		contextTimeout time.Duration
	}

	AddBalanceDTO struct {
		User   string `json:"user"`
		Amount int64  `json:"amount"`
	}
	UpdateStatusDTO struct {
		Status string `json:"status"`
	}
	UpdatePriceDTO struct {
		PricePer1000 int64 `json:"price_per_1000"`
	}
)

func NewAdminHandler(contextTimeoutSec int, adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		contextTimeout: time.Duration(contextTimeoutSec) * time.Second,
	}
}

// AddBalance godoc
// @Summary Credit a user's balance
// @Description The approval half of the top-up flow: the administrator matches
// a claimed payment to a principal and amount out-of-band and credits it here.
// @Tags admin
// @Accept json
// @Success 204 "Balance credited"
// @Failure 401 {object} ErrorResponse "Unauthorized or not an admin"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security ApiKeyAuth
// @Router /api/panel/admin/balance [post]
func (ah *AdminHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ah.contextTimeout)
	defer cancel()

	request := AddBalanceDTO{}
	if err := ah.readBody(w, r, &request); err != nil {
		return
	}

	if err := ah.adminService.AddBalance(ctx, models.Principal(request.User), request.Amount); err != nil {
		PrepareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrderStatus godoc
// @Summary Update an order's lifecycle status
// @Tags admin
// @Accept json
// @Success 204 "Status updated"
// @Failure 401 {object} ErrorResponse "Unauthorized or not an admin"
// @Failure 422 {object} ErrorResponse "Unknown status"
// @Security ApiKeyAuth
// @Router /api/panel/admin/orders/{orderID}/status [put]
func (ah *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ah.contextTimeout)
	defer cancel()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		PrepareError(w, appErrors.ValidationFailed(err, "orderID", "Order id must be an integer"))
		return
	}

	request := UpdateStatusDTO{}
	if err := ah.readBody(w, r, &request); err != nil {
		return
	}

	if err := ah.adminService.UpdateOrderStatus(ctx, orderID, models.OrderStatus(request.Status)); err != nil {
		PrepareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateServicePrice godoc
// @Summary Update a service's price
// @Description Sets a new price in paise per 1000 units and drops the cached
// catalog so browsing views pick up the change.
// @Tags admin
// @Accept json
// @Success 204 "Price updated"
// @Failure 401 {object} ErrorResponse "Unauthorized or not an admin"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security ApiKeyAuth
// @Router /api/panel/admin/services/{serviceID}/price [put]
func (ah *AdminHandler) UpdateServicePrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ah.contextTimeout)
	defer cancel()

	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		PrepareError(w, appErrors.ValidationFailed(err, "serviceID", "Service id must be an integer"))
		return
	}

	request := UpdatePriceDTO{}
	if err := ah.readBody(w, r, &request); err != nil {
		return
	}

	if err := ah.adminService.UpdateServicePrice(ctx, serviceID, request.PricePer1000); err != nil {
		PrepareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ah *AdminHandler) readBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		err = appErrors.NewWithCode(err, errMsgUnableReadBody, http.StatusBadRequest)
		PrepareError(w, err)
		return err
	}
	if err = json.Unmarshal(body, out); err != nil {
		err = appErrors.NewWithCode(err, "Unable to parse body", http.StatusBadRequest)
		PrepareError(w, err)
		return err
	}
	return nil
}
