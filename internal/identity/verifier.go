// Package identity verifies ID tokens issued by a third-party provider
// (Firebase Auth, Google) and extracts the caller's identity.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

var ErrInvalidToken = errors.New("invalid id token")

// Identity is the provider-side view of a signed-in user.
type Identity struct {
	Subject       string
	Issuer        string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Verifier checks a raw ID token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys and verifies tokens minted for audience.
func NewOIDCVerifier(ctx context.Context, issuerURL, audience string) (*oidcVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: audience}),
	}, nil
}

// NewVerifierWithKeySet builds a verifier against a fixed key set, skipping discovery.
func NewVerifierWithKeySet(issuerURL, audience string, keySet oidc.KeySet) *oidcVerifier {
	return &oidcVerifier{
		verifier: oidc.NewVerifier(issuerURL, keySet, &oidc.Config{ClientID: audience}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if rawIDToken == "" {
		return nil, ErrInvalidToken
	}

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}

	return &Identity{
		Subject:       idToken.Subject,
		Issuer:        idToken.Issuer,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
