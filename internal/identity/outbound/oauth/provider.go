package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

var (
	// ErrUnknownProvider is returned by New for a provider name it cannot build.
	ErrUnknownProvider = errors.New("oauth: unknown provider")
	// ErrNoVerifiedEmail is returned when the account exposes no verified email.
	ErrNoVerifiedEmail = errors.New("oauth: no verified email")
)

// Config holds one provider's client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Provider drives the authorization code flow for one identity provider and
// reads the account profile with the issued token.
type Provider struct {
	name    string
	oauth   *oauth2.Config
	profile func(ctx context.Context, client *http.Client) (*entity.OAuthProfile, error)
}

// New builds the provider called name.
func New(name string, cfg Config) (*Provider, error) {
	switch name {
	case ProviderGoogle:
		return newProvider(name, cfg, endpoints.Google, "https://openidconnect.googleapis.com/v1/userinfo"), nil
	case ProviderGitHub:
		return newProvider(name, cfg, endpoints.GitHub, "https://api.github.com"), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}

func newProvider(name string, cfg Config, endpoint oauth2.Endpoint, apiURL string) *Provider {
	p := &Provider{
		name: name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
		},
	}

	if name == ProviderGitHub {
		p.oauth.Scopes = []string{"read:user", "user:email"}
		p.profile = githubProfile(apiURL)
	} else {
		p.oauth.Scopes = []string{"openid", "email", "profile"}
		p.profile = googleProfile(apiURL)
	}

	return p
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*entity.OAuthProfile, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s exchange: %w", p.name, err)
	}

	profile, err := p.profile(ctx, p.oauth.Client(ctx, tok))
	if err != nil {
		return nil, fmt.Errorf("%s profile: %w", p.name, err)
	}
	profile.Provider = p.name

	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		//nolint:errcheck // best effort for the error message only
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

func googleProfile(userinfoURL string) func(context.Context, *http.Client) (*entity.OAuthProfile, error) {
	return func(ctx context.Context, client *http.Client) (*entity.OAuthProfile, error) {
		var info struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
		}
		if err := getJSON(ctx, client, userinfoURL, &info); err != nil {
			return nil, err
		}
		if info.Email == "" || !info.EmailVerified {
			return nil, ErrNoVerifiedEmail
		}

		return &entity.OAuthProfile{Email: info.Email, Name: info.Name}, nil
	}
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func githubProfile(apiURL string) func(context.Context, *http.Client) (*entity.OAuthProfile, error) {
	return func(ctx context.Context, client *http.Client) (*entity.OAuthProfile, error) {
		var user struct {
			Login string `json:"login"`
			Name  string `json:"name"`
		}
		if err := getJSON(ctx, client, apiURL+"/user", &user); err != nil {
			return nil, err
		}

		var emails []githubEmail
		if err := getJSON(ctx, client, apiURL+"/user/emails", &emails); err != nil {
			return nil, err
		}

		verified := lo.Filter(emails, func(e githubEmail, _ int) bool { return e.Verified })
		if len(verified) == 0 {
			return nil, ErrNoVerifiedEmail
		}

		chosen, ok := lo.Find(verified, func(e githubEmail) bool { return e.Primary })
		if !ok {
			chosen = verified[0]
		}

		return &entity.OAuthProfile{Email: chosen.Email, Name: lo.CoalesceOrEmpty(user.Name, user.Login)}, nil
	}
}
