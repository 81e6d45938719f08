package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GithubConfig holds the OAuth client registration for GitHub.
type GithubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string `env:"GITHUB_REDIRECT_URL"`
}

type githubAdapter struct {
	oauth *oauth2.Config
}

// NewGithubAdapter builds the GitHub provider adapter.
func NewGithubAdapter(cfg GithubConfig) ProviderAdapter {
	return &githubAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (a *githubAdapter) ProviderID() string { return ProviderGithub }

func (a *githubAdapter) AuthURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

func (a *githubAdapter) ResolveProfile(ctx context.Context, code string) (ProviderProfile, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrInvalidOAuth, err)
	}
	client := a.oauth.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, githubUserURL, &user); err != nil {
		return ProviderProfile{}, err
	}

	email := user.Email
	emailVerified := false

	// The profile email is often hidden; the emails endpoint lists the
	// primary address along with its verification status.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, githubEmailsURL, &emails); err == nil {
		for _, e := range emails {
			if e.Primary {
				email = e.Email
				emailVerified = e.Verified
				break
			}
		}
	}
	if email == "" {
		return ProviderProfile{}, ErrNoPrimaryEmail
	}

	return ProviderProfile{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          email,
		EmailVerified:  emailVerified,
		Name:           user.Name,
		AvatarURL:      user.AvatarURL,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: github request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: github returned %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
