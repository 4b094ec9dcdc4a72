package gateway

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	gocache "github.com/patrickmn/go-cache"

	"knowledge-assistant-be/pkg/apperr"
)

const (
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"

	tokenCacheKey = "gateway_access_token"
)

// Credentials configures the OAuth exchange against the enterprise
// gateway. Username/Password are only used with the password grant.
type Credentials struct {
	TokenURL     string
	GrantType    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// TokenSource fetches short-lived gateway access tokens and caches
// them until shortly before expiry so concurrent jobs share one token.
type TokenSource struct {
	creds Credentials
	cache *gocache.Cache
}

func NewTokenSource(creds Credentials) *TokenSource {
	return &TokenSource{
		creds: creds,
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if cached, found := s.cache.Get(tokenCacheKey); found {
		return cached.(string), nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	ttl := gocache.NoExpiration
	if !token.Expiry.IsZero() {
		// Refresh a little early so an almost-expired token is never
		// handed to a long request.
		ttl = time.Until(token.Expiry) - 30*time.Second
		if ttl <= 0 {
			return token.AccessToken, nil
		}
	}
	s.cache.Set(tokenCacheKey, token.AccessToken, ttl)

	return token.AccessToken, nil
}

func (s *TokenSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	switch s.creds.GrantType {
	case GrantPassword:
		conf := &oauth2.Config{
			ClientID:     s.creds.ClientID,
			ClientSecret: s.creds.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: s.creds.TokenURL},
		}
		token, err := conf.PasswordCredentialsToken(ctx, s.creds.Username, s.creds.Password)
		if err != nil {
			return nil, apperr.Provider("gateway.token", "password grant failed", err)
		}
		return token, nil
	default:
		conf := &clientcredentials.Config{
			ClientID:     s.creds.ClientID,
			ClientSecret: s.creds.ClientSecret,
			TokenURL:     s.creds.TokenURL,
		}
		token, err := conf.Token(ctx)
		if err != nil {
			return nil, apperr.Provider("gateway.token", "client credentials grant failed", err)
		}
		return token, nil
	}
}
