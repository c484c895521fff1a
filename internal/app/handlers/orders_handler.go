package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service"
)

type (
	OrdersHandler struct {
		orderService   service.OrderService
		contextTimeout time.Duration
	}

	NewOrderDTO struct {
		Service  int64       `json:"service"`
		Link     string      `json:"link"`
		Quantity json.Number `json:"quantity"`
	}
	// PlacedOrderDTO echoes the submitted values; estimated_total is the
	// client-side figure, the persisted total is backend-authoritative and
	// shows up in the order list.
	PlacedOrderDTO struct {
		OrderID        int64  `json:"order_id"`
		Service        int64  `json:"service"`
		Link           string `json:"link"`
		Quantity       int64  `json:"quantity"`
		EstimatedTotal int64  `json:"estimated_total"`
		BalanceWarning bool   `json:"balance_warning"`
	}
	OrderDTO struct {
		ID        int64     `json:"id"`
		Service   int64     `json:"service"`
		Link      string    `json:"link"`
		Quantity  int64     `json:"quantity"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
		TotalCost int64     `json:"total_cost"`
	}
	EstimateDTO struct {
		Total      int64 `json:"total"`
		Balance    int64 `json:"balance"`
		Sufficient bool  `json:"sufficient"`
	}
)

func NewOrdersHandler(contextTimeoutSec int, orderService service.OrderService) *OrdersHandler {
	return &OrdersHandler{
		orderService:   orderService,
		contextTimeout: time.Duration(contextTimeoutSec) * time.Second,
	}
}

// CreateOrder godoc
// @Summary Place a new SMM order
// @Description Validates the candidate order against a fresh catalog fetch and
// submits it exactly once. A concurrent submission by the same user is rejected
// with 409 and no backend call. On failure the submitted values are echoed back
// in the error flow so the form can retain them.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body NewOrderDTO true "Candidate order"
// @Success 201 {object} PlacedOrderDTO "Order accepted by the backend"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 402 {object} ErrorResponse "Insufficient balance (backend-rejected)"
// @Failure 409 {object} ErrorResponse "Submission already in flight"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Failure 502 {object} ErrorResponse "Backend rejected the order"
// @Security ApiKeyAuth
// @Router /api/panel/orders [post]
func (oh *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), oh.contextTimeout)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		err = appErrors.NewWithCode(err, errMsgUnableReadBody, http.StatusBadRequest)
		PrepareError(w, err)
		return
	}

	request := NewOrderDTO{}
	if err = json.Unmarshal(body, &request); err != nil {
		err = appErrors.NewWithCode(err, "Unable to parse body", http.StatusBadRequest)
		PrepareError(w, err)
		return
	}

	placed, err := oh.orderService.PlaceOrder(ctx, service.PlaceOrderInput{
		ServiceID: request.Service,
		Link:      request.Link,
		Quantity:  request.Quantity.String(),
	})
	if err != nil {
		PrepareError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlacedOrderDTO{
		OrderID:        placed.OrderID,
		Service:        placed.ServiceID,
		Link:           placed.Link,
		Quantity:       placed.Quantity,
		EstimatedTotal: placed.EstimatedTotal,
		BalanceWarning: placed.BalanceWasShort,
	})
}

// GetOrders godoc
// @Summary List the caller's orders
// @Description Returns the caller's orders with backend-tracked status and the
// authoritative total cost. Served from a short-lived cache that is invalidated
// by the caller's own order placements.
// @Tags orders
// @Produce json
// @Success 200 {array} OrderDTO "Orders"
// @Success 204 "No orders to display"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security ApiKeyAuth
// @Router /api/panel/orders [get]
func (oh *OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), oh.contextTimeout)
	defer cancel()

	orders, err := oh.orderService.GetOrders(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	err = appContext.GetContextError(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrdersToOrderDTOSlice(orders))
}

// EstimateOrder godoc
// @Summary Estimate an order total
// @Description Computes the client-side estimate for a service and quantity and
// reports whether the cached balance snapshot covers it. Advisory only.
// @Tags orders
// @Produce json
// @Param service query int true "Service id"
// @Param quantity query string true "Quantity"
// @Success 200 {object} EstimateDTO "Estimate"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security ApiKeyAuth
// @Router /api/panel/orders/estimate [get]
func (oh *OrdersHandler) EstimateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), oh.contextTimeout)
	defer cancel()

	serviceID, err := strconv.ParseInt(r.URL.Query().Get("service"), 10, 64)
	if err != nil {
		err = appErrors.ValidationFailed(err, "service", "Service id must be an integer")
		PrepareError(w, err)
		return
	}

	estimate, err := oh.orderService.EstimateOrder(ctx, serviceID, r.URL.Query().Get("quantity"))
	if err != nil {
		PrepareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EstimateDTO{
		Total:      estimate.Total,
		Balance:    estimate.Balance,
		Sufficient: estimate.Sufficient,
	})
}

func mapOrdersToOrderDTOSlice(orders []models.Order) []OrderDTO {
	responseSlice := make([]OrderDTO, 0, len(orders))
	for _, item := range orders {
		responseSlice = append(responseSlice, OrderDTO{
			ID:        item.ID,
			Service:   item.ServiceID,
			Link:      item.Link,
			Quantity:  item.Quantity,
			Status:    item.Status.String(),
			CreatedAt: item.CreatedAt,
			TotalCost: item.TotalCost,
		})
	}
	return responseSlice
}
