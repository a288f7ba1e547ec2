package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

func testJWKSServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()

	rawKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	key, err := jwk.FromRaw(rawKey.Public())
	if err != nil {
		t.Fatalf("Failed to build JWK: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, "test-kid"); err != nil {
		t.Fatalf("Failed to set kid: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		t.Fatalf("Failed to add key: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(set); err != nil {
			t.Errorf("Failed to encode JWKS: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJWKSManagerFetchesAndCaches(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := testJWKSServer(t, &hits)

	m := NewJWKSManager()
	ctx := context.Background()

	keys, err := m.GetJWKS(ctx, srv.URL)
	if err != nil {
		t.Fatalf("GetJWKS returned error: %v", err)
	}
	if keys.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", keys.Len())
	}
	if _, ok := keys.LookupKeyID("test-kid"); !ok {
		t.Error("Expected key with kid 'test-kid'")
	}

	if _, err := m.GetJWKS(ctx, srv.URL); err != nil {
		t.Fatalf("Second GetJWKS returned error: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected cached fetch, endpoint hit %d times", hits)
	}
}

func TestJWKSManagerErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	m := NewJWKSManager()
	if _, err := m.GetJWKS(context.Background(), srv.URL); err == nil {
		t.Error("Expected error for non-200 JWKS endpoint")
	}
}
