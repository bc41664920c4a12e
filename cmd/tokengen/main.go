// Package main is a development helper that stands in for a token authority.
// It generates a local RSA signing key, serves its public half as a JWKS
// endpoint, and prints a signed bearer token for exercising the API.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

func main() {
	var (
		port    = flag.Int("port", 9090, "Port to serve the JWKS endpoint on")
		subject = flag.String("sub", "dev|local-user", "Subject claim for the issued token")
		ttl     = flag.Duration("ttl", time.Hour, "Token lifetime")
	)
	flag.Parse()

	issuer := fmt.Sprintf("http://localhost:%d/", *port)

	if err := run(*port, issuer, *subject, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(port int, issuer, subject string, ttl time.Duration) error {
	ctx := context.Background()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generate signing key: %w", err)
	}

	kid := ulid.Make().String()

	jwk, err := jwkset.NewJWKFromKey(privateKey.Public(), jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{KID: kid},
	})
	if err != nil {
		return fmt.Errorf("build JWK: %w", err)
	}

	store := jwkset.NewMemoryStorage()
	if err := store.KeyWrite(ctx, jwk); err != nil {
		return fmt.Errorf("store JWK: %w", err)
	}

	rawJWKS, err := store.JSONPublic(ctx)
	if err != nil {
		return fmt.Errorf("marshal JWKS: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	token.Header[jwkset.HeaderKID] = kid

	signed, err := token.SignedString(privateKey)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Printf("AUTHORITY=%s\n", issuer)
	fmt.Printf("kid: %s\n", kid)
	fmt.Printf("token (expires in %s):\n%s\n", ttl, signed)

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(rawJWKS)
	})

	fmt.Printf("serving JWKS at %s.well-known/jwks.json\n", issuer)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
