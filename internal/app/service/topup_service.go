package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/smmboost/panel/internal/app/config"
	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
)

type (
	// TopUpService records top-up intent with the backend. Initiation does
	// not credit anything: an administrator matches the claimed UPI payment
	// to a principal and amount out-of-band and credits it via AddBalance.
	// The two operations share no identifier; that gap belongs to the
	// business process, not to this service.
	TopUpService interface {
		InitiateTopUp(ctx context.Context, amount int64, redirectURL string) error
	}
	TopUpServiceImpl struct {
		backendClient  clients.PanelBackendClient
		balanceService BalanceService
		requestTimeout time.Duration
	}
)

func NewTopUpService(c config.AppConfig, backendClient clients.PanelBackendClient, balanceService BalanceService) *TopUpServiceImpl {
	return &TopUpServiceImpl{
		backendClient:  backendClient,
		balanceService: balanceService,
		requestTimeout: time.Duration(c.SubmissionTimeoutSec) * time.Second,
	}
}

func (ts *TopUpServiceImpl) InitiateTopUp(ctx context.Context, amount int64, redirectURL string) error {
	principal := appContext.GetPrincipal(ctx)
	if principal == "" {
		return appErrors.Unauthenticated(errors.New("no identity"), "Login required to add funds")
	}
	if amount <= 0 {
		return appErrors.ValidationFailed(errors.New("non-positive amount"), "amount", "Amount must be a positive number of paise")
	}
	redirectURL = strings.TrimSpace(redirectURL)
	parsed, err := url.Parse(redirectURL)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return appErrors.ValidationFailed(errors.New("bad redirect url"), "redirect_url", "Redirect URL must be a valid https address")
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ts.requestTimeout)
	defer cancel()

	if err := ts.backendClient.InitiateTopUp(sendCtx, models.TopUpInitiation{
		Amount:      amount,
		RedirectURL: redirectURL,
	}); err != nil {
		return err
	}

	// Approval happens asynchronously and invisibly to the gateway; dropping
	// the snapshot now means the short balance TTL is the only staleness
	// window left once the admin credits the amount.
	ts.balanceService.Invalidate(principal)
	return nil
}
