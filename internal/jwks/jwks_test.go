package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
)

const testKID = "test-key-1"

// testAuthority bundles a local signing key with an httptest JWKS endpoint.
type testAuthority struct {
	privateKey *rsa.PrivateKey
	server     *httptest.Server
	fetches    atomic.Int64
}

func newTestAuthority(t *testing.T) *testAuthority {
	t.Helper()
	ctx := context.Background()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	options := jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{KID: testKID},
	}
	jwk, err := jwkset.NewJWKFromKey(privateKey.Public(), options)
	if err != nil {
		t.Fatalf("failed to build JWK: %v", err)
	}

	store := jwkset.NewMemoryStorage()
	if err := store.KeyWrite(ctx, jwk); err != nil {
		t.Fatalf("failed to store JWK: %v", err)
	}

	rawJWKS, err := store.JSONPublic(ctx)
	if err != nil {
		t.Fatalf("failed to marshal JWKS: %v", err)
	}

	authority := &testAuthority{privateKey: privateKey}
	authority.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authority.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(rawJWKS)
	}))
	t.Cleanup(authority.server.Close)

	return authority
}

// issuer returns the authority string tokens are issued under.
func (a *testAuthority) issuer() string {
	return a.server.URL + "/"
}

// jwksURL returns the key set endpoint.
func (a *testAuthority) jwksURL() string {
	return a.server.URL
}

// sign produces a token signed by the authority's key with the given kid.
func (a *testAuthority) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header[jwkset.HeaderKID] = kid
	}

	signed, err := token.SignedString(a.privateKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
