package service

import (
	"context"
	"errors"
	"time"

	"github.com/smmboost/panel/internal/app/config"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
)

type (
	// AdminService forwards administrative mutations and keeps the gateway's
	// caches honest afterwards; the backend enforces the admin role on every
	// call, the gateway's gating is advisory.
	AdminService interface {
		AddBalance(ctx context.Context, user models.Principal, amount int64) error
		UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
		UpdateServicePrice(ctx context.Context, serviceID int64, newPrice int64) error
	}
	AdminServiceImpl struct {
		backendClient  clients.PanelBackendClient
		catalogService CatalogService
		balanceService BalanceService
		orderService   OrderService
		requestTimeout time.Duration
	}
)

func NewAdminService(c config.AppConfig,
	backendClient clients.PanelBackendClient,
	catalogService CatalogService,
	balanceService BalanceService,
	orderService OrderService) *AdminServiceImpl {
	return &AdminServiceImpl{
		backendClient:  backendClient,
		catalogService: catalogService,
		balanceService: balanceService,
		orderService:   orderService,
		requestTimeout: time.Duration(c.SubmissionTimeoutSec) * time.Second,
	}
}

// AddBalance is the credit half of the top-up flow: the admin matched a
// claimed payment to a principal and an amount by hand.
func (as *AdminServiceImpl) AddBalance(ctx context.Context, user models.Principal, amount int64) error {
	if user == "" {
		return appErrors.ValidationFailed(errors.New("empty principal"), "user", "User must not be empty")
	}
	if amount <= 0 {
		return appErrors.ValidationFailed(errors.New("non-positive amount"), "amount", "Amount must be a positive number of paise")
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), as.requestTimeout)
	defer cancel()

	if err := as.backendClient.AddBalance(sendCtx, user, amount); err != nil {
		return err
	}
	as.balanceService.Invalidate(user)
	return nil
}

func (as *AdminServiceImpl) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if !models.ValidOrderStatus(status) {
		return appErrors.ValidationFailed(errors.New("unknown status"), "status", "Unknown order status")
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), as.requestTimeout)
	defer cancel()

	if err := as.backendClient.UpdateOrderStatus(sendCtx, orderID, status); err != nil {
		return err
	}
	as.orderService.InvalidateAllOrders()
	return nil
}

func (as *AdminServiceImpl) UpdateServicePrice(ctx context.Context, serviceID int64, newPrice int64) error {
	if newPrice < 0 {
		return appErrors.ValidationFailed(errors.New("negative price"), "price_per_1000", "Price must not be negative")
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), as.requestTimeout)
	defer cancel()

	if err := as.backendClient.UpdateServicePrice(sendCtx, serviceID, newPrice); err != nil {
		return err
	}
	// A submission that raced this update re-validates against a forced
	// catalog refresh anyway; invalidating here just shortens the window
	// where browsing views show the old price.
	as.catalogService.Invalidate()
	return nil
}
