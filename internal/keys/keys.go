// Package keys derives the node's per-purpose signing keys from a single
// root secret, the way the original node's --secret_seed flag did
// (original_source/crates/ilp-node/src/main.rs). Rather than hand-rolling
// HKDF-style derivation, it reuses the teacher's own wallet-derivation
// stack (go-bip39 + go-bip32), repurposed from "derive a client payment
// signer" to "derive this node's settlement and admin-token signing keys".
package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// Purpose selects which child key to derive from the root seed. Each
// purpose gets its own non-hardened index under a single hardened
// node-identity branch, so rotating one purpose's key never requires
// re-deriving another's.
type Purpose uint32

const (
	// PurposeSettlement signs outbound settlement engine requests.
	PurposeSettlement Purpose = 0

	// PurposeAdminToken signs admin API JWS tokens (see internal/adminauth).
	PurposeAdminToken Purpose = 1
)

// rootPurpose is the single hardened branch all node-purpose keys hang
// off of; 0x4C5030 is the ASCII bytes of "LP0", distinguishing this
// derivation from any standard BIP44 coin-type path.
const rootPurpose = bip32.FirstHardenedChild + 0x4C5030

// Derive returns the ECDSA private key for the given purpose, derived
// deterministically from mnemonic. The same mnemonic and purpose always
// yield the same key, so operators never need to persist derived keys
// themselves — only the root mnemonic.
func Derive(mnemonic string, purpose Purpose) (*ecdsa.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("keys: invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("keys: deriving master key: %w", err)
	}

	node, err := master.NewChildKey(rootPurpose)
	if err != nil {
		return nil, fmt.Errorf("keys: deriving node branch: %w", err)
	}

	child, err := node.NewChildKey(uint32(purpose))
	if err != nil {
		return nil, fmt.Errorf("keys: deriving purpose %d: %w", purpose, err)
	}

	privateKey, err := crypto.ToECDSA(child.Key)
	if err != nil {
		return nil, fmt.Errorf("keys: converting derived key: %w", err)
	}
	return privateKey, nil
}

// NewMnemonic generates a fresh random BIP39 mnemonic for first-time node
// setup (the operator-facing equivalent of `openssl rand -hex 32` in the
// original node's --secret_seed help text).
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("keys: generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("keys: generating mnemonic: %w", err)
	}
	return mnemonic, nil
}
