package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smmboost/panel/internal/app/config"
	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/logger"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/pricing"
	"github.com/smmboost/panel/internal/app/service/clients"
	"go.uber.org/zap"
)

// SubmissionState tracks one submission attempt through its lifecycle.
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateValidating SubmissionState = "validating"
	StateInvalid    SubmissionState = "invalid"
	StateSubmitting SubmissionState = "submitting"
	StateSucceeded  SubmissionState = "succeeded"
	StateFailed     SubmissionState = "failed"
)

type (
	PlaceOrderInput struct {
		ServiceID int64
		Link      string
		Quantity  string
	}
	// PlacedOrder echoes what was submitted together with the client-side
	// estimate. TotalCost as persisted is backend-authoritative and may
	// differ from EstimatedTotal after a concurrent price change; views
	// learn the real figure from the next order-list fetch.
	PlacedOrder struct {
		OrderID         int64
		ServiceID       int64
		Link            string
		Quantity        int64
		EstimatedTotal  int64
		BalanceSnapshot int64
		BalanceWasShort bool
	}
	OrderEstimate struct {
		Total      int64
		Balance    int64
		Sufficient bool
	}

	// OrderService is the single write path for orders. It validates a
	// candidate order, submits it at most once, and reconciles the balance
	// and order-list caches with the backend's authoritative response.
	OrderService interface {
		PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacedOrder, error)
		EstimateOrder(ctx context.Context, serviceID int64, quantity string) (*OrderEstimate, error)
		GetOrders(ctx context.Context) ([]models.Order, error)
		InvalidateOrders(principal models.Principal)
		InvalidateAllOrders()
	}
	OrderServiceImpl struct {
		backendClient     clients.PanelBackendClient
		catalogService    CatalogService
		balanceService    BalanceService
		ordersCache       *staleCache
		inflight          sync.Map
		submissionTimeout time.Duration
	}
)

func NewOrderService(c config.AppConfig,
	backendClient clients.PanelBackendClient,
	catalogService CatalogService,
	balanceService BalanceService) *OrderServiceImpl {
	return &OrderServiceImpl{
		backendClient:     backendClient,
		catalogService:    catalogService,
		balanceService:    balanceService,
		ordersCache:       newStaleCache(c.OrdersTTL, c.CacheCleanupInterval),
		submissionTimeout: time.Duration(c.SubmissionTimeoutSec) * time.Second,
	}
}

// PlaceOrder runs one submission attempt:
//
//	Idle -> Validating -> { Invalid | Submitting -> { Succeeded | Failed } } -> Idle
//
// Validation failures never reach the network. A second attempt for the same
// principal while one is submitting is rejected without a network call; the
// backend is the only place duplicate-submission semantics can be adjudicated,
// the gateway merely refuses to fire trivially duplicate requests.
func (os *OrderServiceImpl) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacedOrder, error) {
	attemptID := uuid.New()
	principal := appContext.GetPrincipal(ctx)
	os.logState(attemptID, principal, StateValidating)

	if principal == "" {
		os.logState(attemptID, principal, StateInvalid)
		return nil, appErrors.Unauthenticated(errors.New("no identity"), "Login required to place orders")
	}

	// One submission per principal at a time, claimed before any validation
	// round trip: a duplicate attempt must be rejected without issuing even a
	// catalog or balance call of its own.
	if _, loaded := os.inflight.LoadOrStore(principal, attemptID); loaded {
		msg := "another order submission is already in flight"
		return nil, appErrors.NewWithCode(errors.New(msg), "An order submission is already in progress", http.StatusConflict)
	}
	defer os.inflight.Delete(principal)

	link := strings.TrimSpace(input.Link)
	if link == "" {
		os.logState(attemptID, principal, StateInvalid)
		return nil, appErrors.ValidationFailed(errors.New("empty link"), "link", "Link must not be empty")
	}

	// Submission-time validation always runs against a forced catalog
	// refresh: the admin may have changed the price or bounds since the
	// order form was rendered.
	services, err := os.catalogService.Refresh(ctx)
	if err != nil {
		os.logState(attemptID, principal, StateInvalid)
		return nil, appErrors.NetworkUnavailable(err, "Service catalog unavailable, try again")
	}
	svc, found := FindService(services, input.ServiceID)
	if !found {
		os.logState(attemptID, principal, StateInvalid)
		return nil, appErrors.ValidationFailed(errors.New("unknown service"), "service", "Selected service is no longer available")
	}

	qty, err := pricing.ParseQuantity(input.Quantity)
	if err == nil {
		err = pricing.ValidateQuantity(svc, qty)
	}
	if err != nil {
		os.logState(attemptID, principal, StateInvalid)
		return nil, appErrors.ValidationFailed(err, "quantity", err.Error())
	}

	estimate := pricing.ComputeOrderTotal(svc.PricePer1000, qty)

	// Advisory only: the user is warned but not blocked, the backend is the
	// final arbiter of sufficient funds.
	balance, err := os.balanceService.GetBalance(ctx)
	if err != nil {
		logger.Log.Warn("balance snapshot unavailable before submission",
			zap.String("attempt", attemptID.String()), zap.Error(err))
		balance = 0
	}
	short := !pricing.HasSufficientBalance(balance, estimate)
	if short {
		logger.Log.Info("submitting with insufficient balance snapshot",
			zap.String("attempt", attemptID.String()),
			zap.Int64("balance", balance),
			zap.Int64("estimate", estimate))
	}

	os.logState(attemptID, principal, StateSubmitting)

	// The write, once sent, runs to completion even if the initiating view
	// is gone: losing the cache invalidation of a financial mutation is
	// worse than finishing work for a closed tab.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), os.submissionTimeout)
	defer cancel()

	orderID, err := os.backendClient.PlaceOrder(sendCtx, clients.NewOrderRequest{
		Service:  svc.ID,
		Link:     link,
		Quantity: qty,
	})
	if err != nil {
		os.logState(attemptID, principal, StateFailed)
		return nil, err
	}

	os.balanceService.Invalidate(principal)
	os.InvalidateOrders(principal)
	os.logState(attemptID, principal, StateSucceeded)

	return &PlacedOrder{
		OrderID:         orderID,
		ServiceID:       svc.ID,
		Link:            link,
		Quantity:        qty,
		EstimatedTotal:  estimate,
		BalanceSnapshot: balance,
		BalanceWasShort: short,
	}, nil
}

// EstimateOrder backs the live total preview on the order form. It validates
// against the cached catalog; the submit path re-validates against a forced
// refresh.
func (os *OrderServiceImpl) EstimateOrder(ctx context.Context, serviceID int64, quantity string) (*OrderEstimate, error) {
	services, err := os.catalogService.Services(ctx)
	if err != nil {
		return nil, appErrors.NetworkUnavailable(err, "Service catalog unavailable, try again")
	}
	svc, found := FindService(services, serviceID)
	if !found {
		return nil, appErrors.ValidationFailed(errors.New("unknown service"), "service", "Selected service is no longer available")
	}
	qty, err := pricing.ParseQuantity(quantity)
	if err == nil {
		err = pricing.ValidateQuantity(svc, qty)
	}
	if err != nil {
		return nil, appErrors.ValidationFailed(err, "quantity", err.Error())
	}

	total := pricing.ComputeOrderTotal(svc.PricePer1000, qty)
	balance, err := os.balanceService.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderEstimate{
		Total:      total,
		Balance:    balance,
		Sufficient: pricing.HasSufficientBalance(balance, total),
	}, nil
}

// GetOrders serves the caller's order list from cache, fetching on miss.
func (os *OrderServiceImpl) GetOrders(ctx context.Context) ([]models.Order, error) {
	principal := appContext.GetPrincipal(ctx)
	if principal == "" {
		return nil, appErrors.Unauthenticated(errors.New("no identity"), "Login required to list orders")
	}

	key := principal.String()
	if cached, found := os.ordersCache.Get(key); found {
		return cached.([]models.Order), nil
	}

	gen := os.ordersCache.generation(key)
	orders, err := os.backendClient.ListOrdersByUser(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !os.ordersCache.put(key, gen, orders) {
		logger.Log.Debug("discarding stale order list fetch", zap.String("principal", key))
	}
	return orders, nil
}

func (os *OrderServiceImpl) InvalidateOrders(principal models.Principal) {
	os.ordersCache.invalidate(principal.String())
}

// InvalidateAllOrders backs administrative status updates: the gateway does
// not know which user owns the mutated order, so every cached list goes.
func (os *OrderServiceImpl) InvalidateAllOrders() {
	os.ordersCache.invalidateAll()
}

func (os *OrderServiceImpl) logState(attemptID uuid.UUID, principal models.Principal, state SubmissionState) {
	logger.Log.Debug("submission state",
		zap.String("attempt", attemptID.String()),
		zap.String("principal", principal.String()),
		zap.String("state", string(state)))
}
