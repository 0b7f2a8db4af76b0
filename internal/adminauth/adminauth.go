// Package adminauth issues and verifies the admin API's bearer tokens.
// The original node took a single static --admin_auth_token string
// compared byte-for-byte on every request. This replaces that with
// short-lived signed tokens (JWS, via gopkg.in/square/go-jose.v2),
// keyed off the node's admin-token signing key (internal/keys,
// keys.PurposeAdminToken), so a leaked token expires instead of
// granting standing access.
package adminauth

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// Claims is the payload signed into every admin token.
type Claims struct {
	jwt.Claims
	Scope string `json:"scope"`
}

// Issuer signs and verifies admin tokens for a single node identity.
type Issuer struct {
	signer    jose.Signer
	publicKey *ecdsa.PublicKey
	issuer    string
	ttl       time.Duration
}

// NewIssuer builds an Issuer that signs tokens with key and accepts only
// tokens it signed itself (issuer == nodeID). Tokens are valid for ttl
// past issuance.
func NewIssuer(nodeID string, key *ecdsa.PrivateKey, ttl time.Duration) (*Issuer, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: key}, nil)
	if err != nil {
		return nil, fmt.Errorf("adminauth: building signer: %w", err)
	}
	return &Issuer{
		signer:    signer,
		publicKey: &key.PublicKey,
		issuer:    nodeID,
		ttl:       ttl,
	}, nil
}

// Issue mints a new token granting scope, valid from now for the
// issuer's configured TTL.
func (iss *Issuer) Issue(subject, scope string, now time.Time) (string, error) {
	claims := Claims{
		Claims: jwt.Claims{
			Issuer:    iss.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Expiry:    jwt.NewNumericDate(now.Add(iss.ttl)),
		},
		Scope: scope,
	}
	token, err := jwt.Signed(iss.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("adminauth: signing token: %w", err)
	}
	return token, nil
}

// Verify parses and validates token, returning its claims if the
// signature, issuer, and expiry all check out as of now. No clock-skew
// leeway is applied: a token is rejected once its TTL has passed.
func (iss *Issuer) Verify(token string, now time.Time) (Claims, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return Claims{}, fmt.Errorf("adminauth: malformed token: %w", err)
	}

	var claims Claims
	if err := parsed.Claims(iss.publicKey, &claims); err != nil {
		return Claims{}, fmt.Errorf("adminauth: invalid signature: %w", err)
	}

	expected := jwt.Expected{Issuer: iss.issuer, Time: now}
	if err := claims.Claims.ValidateWithLeeway(expected, 0); err != nil {
		return Claims{}, fmt.Errorf("adminauth: token rejected: %w", err)
	}

	return claims, nil
}
