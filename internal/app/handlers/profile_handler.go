package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service"
)

type (
	ProfileHandler struct {
		profileService service.ProfileService
		roleService    service.RoleService
		contextTimeout time.Duration
	}

	ProfileDTO struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	SessionDTO struct {
		Role    string      `json:"role"`
		IsAdmin bool        `json:"is_admin"`
		Profile *ProfileDTO `json:"profile,omitempty"`
	}
)

func NewProfileHandler(contextTimeoutSec int, profileService service.ProfileService, roleService service.RoleService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		roleService:    roleService,
		contextTimeout: time.Duration(contextTimeoutSec) * time.Second,
	}
}

// GetSession godoc
// @Summary Caller's session view
// @Description Returns the caller's role (as probed from the backend, briefly
// cached) and profile. The role only gates UI affordances; the backend
// re-checks authorization on every privileged call.
// @Tags profile
// @Produce json
// @Success 200 {object} SessionDTO "Session"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security ApiKeyAuth
// @Router /api/panel/session [get]
func (ph *ProfileHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ph.contextTimeout)
	defer cancel()

	role, err := ph.roleService.Role(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}
	profile, err := ph.profileService.GetProfile(ctx)
	if err != nil {
		PrepareError(w, err)
		return
	}

	response := SessionDTO{Role: string(role), IsAdmin: role == models.RoleAdmin}
	if profile != nil {
		response.Profile = &ProfileDTO{Name: profile.Name, Email: profile.Email}
	}
	writeJSON(w, http.StatusOK, response)
}

// SaveProfile godoc
// @Summary Save the caller's profile
// @Tags profile
// @Accept json
// @Success 204 "Profile saved"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security ApiKeyAuth
// @Router /api/panel/profile [put]
func (ph *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ph.contextTimeout)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		err = appErrors.NewWithCode(err, errMsgUnableReadBody, http.StatusBadRequest)
		PrepareError(w, err)
		return
	}
	request := ProfileDTO{}
	if err = json.Unmarshal(body, &request); err != nil {
		err = appErrors.NewWithCode(err, "Unable to parse body", http.StatusBadRequest)
		PrepareError(w, err)
		return
	}

	if err = ph.profileService.SaveProfile(ctx, models.UserProfile{Name: request.Name, Email: request.Email}); err != nil {
		PrepareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
