package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethgrid/pester"
	"github.com/smmboost/panel/internal/app/config"
	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/logger"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/pricing"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

type (
	// PanelBackendClient is the single boundary to the panel backend. The
	// backend owns all business state: balances, orders, the catalog and
	// role assignments. Reads retry transparently; mutating calls are sent
	// exactly once, duplicate-submission semantics belong to the backend.
	PanelBackendClient interface {
		ListServices(ctx context.Context) ([]models.Service, error)
		GetBalance(ctx context.Context) (int64, error)
		PlaceOrder(ctx context.Context, req NewOrderRequest) (int64, error)
		ListOrdersByUser(ctx context.Context, user models.Principal) ([]models.Order, error)
		InitiateTopUp(ctx context.Context, req models.TopUpInitiation) error
		AddBalance(ctx context.Context, user models.Principal, amount int64) error
		UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
		UpdateServicePrice(ctx context.Context, serviceID int64, newPrice int64) error
		GetCallerUserRole(ctx context.Context) (models.UserRole, error)
		GetUserProfile(ctx context.Context) (*models.UserProfile, error)
		SaveUserProfile(ctx context.Context, profile models.UserProfile) error
	}
	PanelBackendClientImpl struct {
		baseURL     string
		readClient  *pester.Client
		writeClient *resty.Client
		rateLimiter ratelimit.Limiter
	}

	NewOrderRequest struct {
		Service  int64  `json:"service"`
		Link     string `json:"link"`
		Quantity int64  `json:"quantity"`
	}

	serviceWire struct {
		ID           int64       `json:"id"`
		Name         string      `json:"name"`
		Description  string      `json:"description"`
		Category     string      `json:"category"`
		PricePer1000 json.Number `json:"price_per_1000"`
		MinOrder     int64       `json:"min_order"`
		MaxOrder     int64       `json:"max_order"`
	}
	balanceWire struct {
		Balance json.Number `json:"balance"`
	}
	orderIDWire struct {
		OrderID int64 `json:"order_id"`
	}
	roleWire struct {
		Role string `json:"role"`
	}
	errorWire struct {
		Error string `json:"error"`
	}

	LoggingRoundTripper struct {
		Proxied http.RoundTripper
	}
)

func NewPanelBackendClient(c config.AppConfig) *PanelBackendClientImpl {
	rateLimiter := ratelimit.New(c.BackendMaxRequestsPerSec)

	readClient := pester.New()
	readClient.Concurrency = 1
	readClient.MaxRetries = c.BackendReadRetries
	readClient.Backoff = pester.ExponentialBackoff
	readClient.RetryOnHTTP429 = true
	readClient.Timeout = time.Duration(c.BackendRequestTimeoutSec) * time.Second
	readClient.Transport = &LoggingRoundTripper{Proxied: http.DefaultTransport}

	writeClient := resty.New().
		SetBaseURL(c.BackendAddress).
		SetTimeout(time.Duration(c.BackendRequestTimeoutSec) * time.Second).
		SetRetryCount(0). // a financial mutation is never retried blindly
		SetTransport(&LoggingRoundTripper{Proxied: http.DefaultTransport})

	return &PanelBackendClientImpl{
		baseURL:     c.BackendAddress,
		readClient:  readClient,
		writeClient: writeClient,
		rateLimiter: rateLimiter,
	}
}

// ListServices is public: it requires no identity and is safe to call before
// authentication completes.
func (bc *PanelBackendClientImpl) ListServices(ctx context.Context) ([]models.Service, error) {
	body, err := bc.get(ctx, "/api/services")
	if err != nil {
		return nil, err
	}
	var wire []serviceWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, appErrors.ServerRejected(fmt.Errorf("decode services: %w", err), "Malformed catalog response")
	}
	services := make([]models.Service, 0, len(wire))
	for _, sw := range wire {
		svc, err := coerceService(sw)
		if err != nil {
			return nil, appErrors.ServerRejected(fmt.Errorf("service %d: %w", sw.ID, err), "Malformed catalog entry")
		}
		services = append(services, svc)
	}
	return services, nil
}

func (bc *PanelBackendClientImpl) GetBalance(ctx context.Context) (int64, error) {
	body, err := bc.get(ctx, "/api/balance")
	if err != nil {
		return 0, err
	}
	wire := balanceWire{}
	if err := json.Unmarshal(body, &wire); err != nil {
		return 0, appErrors.ServerRejected(fmt.Errorf("decode balance: %w", err), "Malformed balance response")
	}
	// The backend omits the field for accounts that were never credited;
	// absent means zero. A present but non-integer value is still rejected.
	if wire.Balance == "" {
		return 0, nil
	}
	balance, err := wire.Balance.Int64()
	if err != nil || balance < 0 {
		return 0, appErrors.ServerRejected(fmt.Errorf("balance %q not a non-negative integer", wire.Balance), "Malformed balance response")
	}
	return balance, nil
}

func (bc *PanelBackendClientImpl) PlaceOrder(ctx context.Context, req NewOrderRequest) (int64, error) {
	wire := orderIDWire{}
	if err := bc.write(ctx, http.MethodPost, "/api/orders", req, &wire); err != nil {
		return 0, err
	}
	return wire.OrderID, nil
}

func (bc *PanelBackendClientImpl) ListOrdersByUser(ctx context.Context, user models.Principal) ([]models.Order, error) {
	body, err := bc.get(ctx, "/api/users/"+user.String()+"/orders")
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, appErrors.ServerRejected(fmt.Errorf("decode orders: %w", err), "Malformed orders response")
	}
	return orders, nil
}

func (bc *PanelBackendClientImpl) InitiateTopUp(ctx context.Context, req models.TopUpInitiation) error {
	return bc.write(ctx, http.MethodPost, "/api/topup", req, nil)
}

func (bc *PanelBackendClientImpl) AddBalance(ctx context.Context, user models.Principal, amount int64) error {
	payload := struct {
		User   models.Principal `json:"user"`
		Amount int64            `json:"amount"`
	}{User: user, Amount: amount}
	return bc.write(ctx, http.MethodPost, "/api/admin/balance", payload, nil)
}

func (bc *PanelBackendClientImpl) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	payload := struct {
		Status models.OrderStatus `json:"status"`
	}{Status: status}
	path := "/api/admin/orders/" + strconv.FormatInt(orderID, 10) + "/status"
	return bc.write(ctx, http.MethodPut, path, payload, nil)
}

func (bc *PanelBackendClientImpl) UpdateServicePrice(ctx context.Context, serviceID int64, newPrice int64) error {
	payload := struct {
		PricePer1000 int64 `json:"price_per_1000"`
	}{PricePer1000: newPrice}
	path := "/api/admin/services/" + strconv.FormatInt(serviceID, 10) + "/price"
	return bc.write(ctx, http.MethodPut, path, payload, nil)
}

func (bc *PanelBackendClientImpl) GetCallerUserRole(ctx context.Context) (models.UserRole, error) {
	body, err := bc.get(ctx, "/api/role")
	if err != nil {
		return models.RoleGuest, err
	}
	wire := roleWire{}
	if err := json.Unmarshal(body, &wire); err != nil {
		return models.RoleGuest, appErrors.ServerRejected(fmt.Errorf("decode role: %w", err), "Malformed role response")
	}
	switch models.UserRole(wire.Role) {
	case models.RoleAdmin, models.RoleUser, models.RoleGuest:
		return models.UserRole(wire.Role), nil
	}
	return models.RoleGuest, appErrors.ServerRejected(fmt.Errorf("unknown role %q", wire.Role), "Malformed role response")
}

func (bc *PanelBackendClientImpl) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	body, err := bc.get(ctx, "/api/profile")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, nil
	}
	profile := &models.UserProfile{}
	if err := json.Unmarshal(body, profile); err != nil {
		return nil, appErrors.ServerRejected(fmt.Errorf("decode profile: %w", err), "Malformed profile response")
	}
	return profile, nil
}

func (bc *PanelBackendClientImpl) SaveUserProfile(ctx context.Context, profile models.UserProfile) error {
	return bc.write(ctx, http.MethodPut, "/api/profile", profile, nil)
}

// get performs a rate-limited, retrying request; all read endpoints are
// idempotent so transparent retries are safe.
func (bc *PanelBackendClientImpl) get(ctx context.Context, path string) ([]byte, error) {
	bc.rateLimiter.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bc.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token := appContext.GetAuthToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := bc.readClient.Do(req)
	if err != nil {
		return nil, appErrors.NetworkUnavailable(fmt.Errorf("backend request: %w", err), "Backend unreachable")
	}
	body, err := io.ReadAll(resp.Body)
	defer resp.Body.Close()
	if err != nil {
		return nil, appErrors.NetworkUnavailable(fmt.Errorf("read response body: %w", err), "Backend unreachable")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mapBackendError(resp.StatusCode, body)
	}
	return body, nil
}

// write performs a rate-limited, single-attempt mutation. The request, once
// sent, runs to completion; callers detach it from the originating HTTP
// request so cache invalidation still happens after the view is gone.
func (bc *PanelBackendClientImpl) write(ctx context.Context, method, path string, payload, out interface{}) error {
	bc.rateLimiter.Take()

	req := bc.writeClient.R().SetContext(ctx).SetBody(payload)
	if token := appContext.GetAuthToken(ctx); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return appErrors.NetworkUnavailable(fmt.Errorf("backend request: %w", err), "Backend unreachable")
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return mapBackendError(resp.StatusCode(), resp.Body())
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return appErrors.ServerRejected(fmt.Errorf("decode response: %w", err), "Malformed backend response")
		}
	}
	return nil
}

// mapBackendError turns the backend's tagged error envelope into the panel
// taxonomy, keeping the backend's message verbatim where one is present.
func mapBackendError(status int, body []byte) error {
	msg := "Backend rejected the request"
	wire := errorWire{}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		msg = wire.Error
	}
	cause := errors.New(msg)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErrors.Unauthenticated(cause, msg)
	case http.StatusPaymentRequired:
		return appErrors.InsufficientBalance(cause, msg)
	default:
		return appErrors.ServerRejected(cause, msg)
	}
}

func coerceService(sw serviceWire) (models.Service, error) {
	price, err := pricing.CoercePricePer1000(sw.PricePer1000.String())
	if err != nil {
		return models.Service{}, err
	}
	if !models.ValidCategory(models.Category(sw.Category)) {
		return models.Service{}, fmt.Errorf("unknown category %q", sw.Category)
	}
	if sw.MinOrder <= 0 || sw.MaxOrder < sw.MinOrder {
		return models.Service{}, fmt.Errorf("invalid order bounds [%d, %d]", sw.MinOrder, sw.MaxOrder)
	}
	return models.Service{
		ID:           sw.ID,
		Name:         sw.Name,
		Description:  sw.Description,
		Category:     models.Category(sw.Category),
		PricePer1000: price,
		MinOrder:     sw.MinOrder,
		MaxOrder:     sw.MaxOrder,
	}, nil
}

func (lrt *LoggingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	logRequest(r)
	response, err := lrt.Proxied.RoundTrip(r)
	if err != nil {
		logger.Log.Error("backend request error", zap.Error(err))
		return nil, err
	}
	logResponse(response)
	return response, nil
}

func logResponse(response *http.Response) {
	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		logger.Log.Error("backend response error", zap.Error(err))
		return
	}
	response.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	body := string(bodyBytes)
	if len(body) == 0 {
		body = "empty body"
	}

	logger.Log.Debug("BACKEND RESPONSE:",
		zap.Int("Status", response.StatusCode),
		zap.Int64("Content-Length", response.ContentLength),
		zap.String("Body", body),
	)
}

func logRequest(r *http.Request) {
	bodyMsg, err := getRequestBodyForLogging(r)
	if err != nil {
		logger.Log.Error("backend log request error", zap.Error(err))
		return
	}
	logger.Log.Debug("BACKEND REQUEST:",
		zap.String("request_id", appContext.GetRequestID(r.Context())),
		zap.String("Method", r.Method),
		zap.String("Path", r.URL.String()),
		zap.String("Body", bodyMsg),
	)
}

func getRequestBodyForLogging(r *http.Request) (string, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "empty body", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("error reading request body: %w", err)
	}
	defer r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return string(body), nil
}
