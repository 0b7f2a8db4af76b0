package adminauth

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("crypto.GenerateKey() error = %v", err)
	}
	issuer, err := NewIssuer("node.test", key, time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	return issuer
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	token, err := issuer.Issue("operator", "read", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Verify(token, now.Add(time.Second))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Scope != "read" {
		t.Errorf("claims.Scope = %q, want %q", claims.Scope, "read")
	}
	if claims.Subject != "operator" {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, "operator")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	token, err := issuer.Issue("operator", "read", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token, now.Add(2*time.Minute)); err == nil {
		t.Error("Verify() error = nil, want expiry error")
	}
}

func TestVerify_RejectsTokenFromDifferentIssuer(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	token, err := other.Issue("operator", "read", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token, now); err == nil {
		t.Error("Verify() error = nil, want signature-mismatch error")
	}
}
