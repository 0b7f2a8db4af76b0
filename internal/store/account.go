// Package store holds accounts the node knows how to pay and be paid by.
// The validator (internal/validator) never touches this package — it only
// sees the opaque account type parameter (spec.md §3), which this node
// instantiates with the peer's ILP address string — but the terminal
// receiver, settlement, and the admin MCP tools resolve an ILP address
// down to one of the two account kinds defined here, the same
// EVM/SVM split the teacher draws for payment networks (chains.go).
package store

import (
	"crypto/ecdsa"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// Kind identifies which virtual machine an account's identity belongs to.
type Kind string

const (
	KindEVM Kind = "evm"
	KindSVM Kind = "svm"
)

var ilpAddressRegex = regexp.MustCompile(`^[a-zA-Z0-9_~-]+(\.[a-zA-Z0-9_~-]+)*$`)

// ValidateILPAddress reports whether addr satisfies the dot-separated
// segment grammar ILP addresses use (e.g. "g.example.alice").
func ValidateILPAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("store: ILP address cannot be empty")
	}
	if !ilpAddressRegex.MatchString(addr) {
		return fmt.Errorf("store: malformed ILP address %q", addr)
	}
	return nil
}

// Account is a registered counterparty: an ILP address plus the
// on-chain identity needed to settle with it. The validator chain
// carries only the ILP address string; Account is looked up from it.
type Account struct {
	ILPAddress string
	Kind       Kind
	EVMAddress common.Address  // set when Kind == KindEVM
	SVMAddress solana.PublicKey // set when Kind == KindSVM
	AssetCode  string
	AssetScale uint8
}

// Equal reports whether two accounts share the same on-chain identity.
func (a Account) Equal(other Account) bool {
	if a.Kind != other.Kind {
		return false
	}
	switch a.Kind {
	case KindEVM:
		return a.EVMAddress == other.EVMAddress
	case KindSVM:
		return a.SVMAddress.Equals(other.SVMAddress)
	default:
		return false
	}
}

// NewEVMAccount builds an Account identified by the Ethereum address
// derived from pub, the way the teacher's keystore derives a signer's
// on-chain identity from its public key.
func NewEVMAccount(ilpAddress string, pub *ecdsa.PublicKey, assetCode string, assetScale uint8) (Account, error) {
	if err := ValidateILPAddress(ilpAddress); err != nil {
		return Account{}, err
	}
	return Account{
		ILPAddress: ilpAddress,
		Kind:       KindEVM,
		EVMAddress: crypto.PubkeyToAddress(*pub),
		AssetCode:  assetCode,
		AssetScale: assetScale,
	}, nil
}

// NewSVMAccount builds an Account identified by a Solana public key.
func NewSVMAccount(ilpAddress string, pub solana.PublicKey, assetCode string, assetScale uint8) (Account, error) {
	if err := ValidateILPAddress(ilpAddress); err != nil {
		return Account{}, err
	}
	return Account{
		ILPAddress: ilpAddress,
		Kind:       KindSVM,
		SVMAddress: pub,
		AssetCode:  assetCode,
		AssetScale: assetScale,
	}, nil
}

// Identity returns the chain-specific identity as a printable string,
// independent of Kind — callers that only need to log or index an
// account (rather than settle with it) can use this instead of
// switching on Kind themselves.
func (a Account) Identity() string {
	switch a.Kind {
	case KindEVM:
		return a.EVMAddress.Hex()
	case KindSVM:
		return a.SVMAddress.String()
	default:
		return ""
	}
}
