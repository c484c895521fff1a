package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/service"
)

type (
	BalanceHandler struct {
		balanceService service.BalanceService
		topUpService   service.TopUpService
		contextTimeout time.Duration
	}

	BalanceDTO struct {
		Balance int64 `json:"balance"`
	}
	TopUpRequestDTO struct {
		Amount      int64  `json:"amount"`
		RedirectURL string `json:"redirect_url"`
	}
)

func NewBalanceHandler(contextTimeoutSec int, balanceService service.BalanceService, topUpService service.TopUpService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		topUpService:   topUpService,
		contextTimeout: time.Duration(contextTimeoutSec) * time.Second,
	}
}

// GetBalance godoc
// @Summary Current prepaid balance
// @Description Returns the caller's balance snapshot in paise. The value is a
// point-in-time copy of the server-held balance and may lag behind it; the
// backend remains the sole enforcer of sufficient funds.
// @Tags balance
// @Produce json
// @Success 200 {object} BalanceDTO "Balance snapshot"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security ApiKeyAuth
// @Router /api/panel/balance [get]
func (bh *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.contextTimeout)
	defer cancel()

	balance, err := bh.balanceService.GetBalance(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}

	err = appContext.GetContextError(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Balance: balance})
}

// InitiateTopUp godoc
// @Summary Initiate a manual UPI top-up
// @Description Records the top-up intent with the backend. No balance is
// credited here; an administrator approves and credits the amount separately.
// @Tags balance
// @Accept json
// @Produce json
// @Param request body TopUpRequestDTO true "Top-up intent"
// @Success 202 "Top-up intent recorded"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security ApiKeyAuth
// @Router /api/panel/topup [post]
func (bh *BalanceHandler) InitiateTopUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), bh.contextTimeout)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		err = appErrors.NewWithCode(err, errMsgUnableReadBody, http.StatusBadRequest)
		PrepareError(w, err)
		return
	}

	request := TopUpRequestDTO{}
	if err = json.Unmarshal(body, &request); err != nil {
		err = appErrors.NewWithCode(err, "Unable to parse body", http.StatusBadRequest)
		PrepareError(w, err)
		return
	}

	if err = bh.topUpService.InitiateTopUp(ctx, request.Amount, request.RedirectURL); err != nil {
		PrepareError(w, err)
		return
	}

	err = appContext.GetContextError(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
