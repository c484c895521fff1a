package service

import (
	"context"
	"errors"
	"strings"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
)

type (
	// ProfileService is a thin passthrough; profiles live on the backend and
	// carry no panel-side logic.
	ProfileService interface {
		GetProfile(ctx context.Context) (*models.UserProfile, error)
		SaveProfile(ctx context.Context, profile models.UserProfile) error
	}
	ProfileServiceImpl struct {
		backendClient clients.PanelBackendClient
	}
)

func NewProfileService(backendClient clients.PanelBackendClient) *ProfileServiceImpl {
	return &ProfileServiceImpl{backendClient: backendClient}
}

func (ps *ProfileServiceImpl) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	if appContext.GetPrincipal(ctx) == "" {
		return nil, appErrors.Unauthenticated(errors.New("no identity"), "Login required")
	}
	return ps.backendClient.GetUserProfile(ctx)
}

func (ps *ProfileServiceImpl) SaveProfile(ctx context.Context, profile models.UserProfile) error {
	if appContext.GetPrincipal(ctx) == "" {
		return appErrors.Unauthenticated(errors.New("no identity"), "Login required")
	}
	if strings.TrimSpace(profile.Name) == "" {
		return appErrors.ValidationFailed(errors.New("empty name"), "name", "Name must not be empty")
	}
	return ps.backendClient.SaveUserProfile(ctx, profile)
}
