package classroom

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CredentialContext selects how the gateway authenticates. The two
// implementations are interchangeable from the sync engine's point of view;
// only the directory-enrichment capability differs.
type CredentialContext interface {
	Name() string
	Client(ctx context.Context) (*http.Client, error)
	// DirectoryEnabled reports whether Admin Directory custom-schema lookups
	// may be performed under this credential.
	DirectoryEnabled() bool
}

// ServiceAccountContext authenticates every phase with one fixed
// service-account key, impersonating a Workspace admin via domain-wide
// delegation. No per-user directory enrichment.
type ServiceAccountContext struct {
	cfg config.GoogleConfig
}

func NewServiceAccountContext(cfg config.GoogleConfig) *ServiceAccountContext {
	return &ServiceAccountContext{cfg: cfg}
}

func (s *ServiceAccountContext) Name() string { return "service_account" }

func (s *ServiceAccountContext) Client(ctx context.Context) (*http.Client, error) {
	data, err := os.ReadFile(s.cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, s.cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	conf.Subject = s.cfg.ImpersonateSubject

	return conf.Client(ctx), nil
}

func (s *ServiceAccountContext) DirectoryEnabled() bool { return false }

// AdminOAuthContext authenticates with the initiating admin's stored
// access/refresh token pair and additionally allows directory custom-schema
// enrichment for roster members.
type AdminOAuthContext struct {
	cfg          config.GoogleConfig
	accessToken  string
	refreshToken string
}

func NewAdminOAuthContext(cfg config.GoogleConfig, accessToken, refreshToken string) *AdminOAuthContext {
	return &AdminOAuthContext{
		cfg:          cfg,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

func (a *AdminOAuthContext) Name() string { return "admin_oauth" }

func (a *AdminOAuthContext) Client(ctx context.Context) (*http.Client, error) {
	conf := &oauth2.Config{
		ClientID:     a.cfg.OAuthClientID,
		ClientSecret: a.cfg.OAuthClientSecret,
		Scopes:       a.cfg.Scopes,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		AccessToken:  a.accessToken,
		RefreshToken: a.refreshToken,
	}

	return conf.Client(ctx, token), nil
}

func (a *AdminOAuthContext) DirectoryEnabled() bool { return true }
