package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, hits *int64, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(hits, 1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	var hits int64
	srv := newTokenServer(t, &hits, 3600)
	defer srv.Close()

	source := NewTokenSource(Credentials{
		TokenURL:     srv.URL,
		GrantType:    GrantClientCredentials,
		ClientID:     "svc",
		ClientSecret: "secret",
	})

	first, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", first)

	second, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt64(&hits))
}

func TestTokenNearExpiryIsNotCached(t *testing.T) {
	var hits int64
	// Expires inside the refresh margin, so every call must fetch.
	srv := newTokenServer(t, &hits, 10)
	defer srv.Close()

	source := NewTokenSource(Credentials{
		TokenURL:     srv.URL,
		GrantType:    GrantClientCredentials,
		ClientID:     "svc",
		ClientSecret: "secret",
	})

	first, err := source.Token(context.Background())
	require.NoError(t, err)
	second, err := source.Token(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))
}

func TestTokenPropagatesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	source := NewTokenSource(Credentials{
		TokenURL:     srv.URL,
		GrantType:    GrantClientCredentials,
		ClientID:     "svc",
		ClientSecret: "wrong",
	})

	_, err := source.Token(context.Background())
	require.Error(t, err)
}
