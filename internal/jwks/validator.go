package jwks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"

	"github.com/roster/roster/internal/metrics"
)

// ErrMalformedToken is returned when a token cannot be decoded far enough to
// identify its signing key. Kept distinct from ErrKeySetFetch so the gate can
// log the actual cause.
var ErrMalformedToken = errors.New("malformed token")

// acceptedMethods lists the signing algorithms the validator accepts.
var acceptedMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA"}

// KeySetFetcher retrieves the key set for a JWKS URL. *Client satisfies it.
type KeySetFetcher interface {
	KeySet(ctx context.Context, jwksURL string) (jwkset.JWKSMarshal, error)
}

// Validator checks bearer tokens against keys published by an authority.
type Validator struct {
	authority string
	jwksURL   string
	keys      KeySetFetcher
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewValidator creates a token validator for the given authority.
// The authority string is matched verbatim against the token's issuer claim.
func NewValidator(authority, jwksURL string, keys KeySetFetcher, logger *slog.Logger, recorder metrics.Recorder) *Validator {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Validator{
		authority: authority,
		jwksURL:   jwksURL,
		keys:      keys,
		logger:    logger,
		metrics:   recorder,
	}
}

// Validate reports whether the token is signed by a key in the authority's
// key set and carries the expected issuer and a non-empty subject.
//
// The return contract mirrors the error taxonomy: (false, nil) for any
// cryptographic or claims failure, a non-nil error only when the token is too
// malformed to route (ErrMalformedToken) or the key set cannot be obtained
// (ErrKeySetFetch).
func (v *Validator) Validate(ctx context.Context, token string) (bool, error) {
	start := time.Now()
	defer func() {
		v.metrics.ObserveTokenValidation(time.Since(start))
	}()

	kid, err := tokenKID(token)
	if err != nil {
		return false, err
	}

	set, err := v.keys.KeySet(ctx, v.jwksURL)
	if err != nil {
		return false, err
	}

	key, ok := findKey(set, kid)
	if !ok {
		// A kid the authority does not publish rejects the request rather
		// than treating it as a server fault.
		v.logger.Warn("token references unknown signing key", slog.String("kid", kid))
		return false, nil
	}

	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods(acceptedMethods),
		jwt.WithIssuer(v.authority),
	)
	if err != nil {
		v.logger.Error("failed to validate token",
			slog.String("kid", kid),
			slog.String("error", err.Error()),
		)
		return false, nil
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		v.logger.Error("token has no subject claim", slog.String("kid", kid))
		return false, nil
	}

	return true, nil
}

// Subject returns the token's subject claim without verifying the signature.
// Only meaningful for tokens that already passed Validate.
func Subject(token string) string {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	subject, _ := unverified.Claims.GetSubject()
	return subject
}

// tokenKID extracts the key-id header without verifying the signature.
func tokenKID(token string) (string, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	kid, ok := unverified.Header[jwkset.HeaderKID].(string)
	if !ok || kid == "" {
		return "", fmt.Errorf("%w: missing kid header", ErrMalformedToken)
	}

	return kid, nil
}

// findKey locates kid in the set and converts it to its crypto key type.
func findKey(set jwkset.JWKSMarshal, kid string) (any, bool) {
	for _, marshal := range set.Keys {
		if marshal.KID != kid {
			continue
		}
		jwk, err := jwkset.NewJWKFromMarshal(marshal, jwkset.JWKMarshalOptions{}, jwkset.JWKValidateOptions{})
		if err != nil {
			continue
		}
		return jwk.Key(), true
	}
	return nil, false
}
