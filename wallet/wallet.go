// Package wallet supplies the signing identity consumed by the transaction
// pipeline: a public/secret keypair, a sign operation, and address
// derivation from a public key. Key custody beyond an in-memory keypair is
// out of scope.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Err is a simple string error helper.
type Err string

func (e Err) Error() string { return string(e) }

var (
	ErrNotInitialized = Err("Wallet is not initialized.")
	ErrBadPubKey      = Err("Failed to create address from public key.")
)

// Wallet is the identity adapter the pipeline signs with.
type Wallet interface {
	// PublicKeyHex returns the hex public key, or "" until ready.
	PublicKeyHex() string
	// Ready reports whether both keys are present.
	Ready() bool
	// Sign signs msg and returns the raw signature.
	Sign(msg []byte) ([]byte, error)
}

// KeyWallet is an in-memory ed25519 keypair.
type KeyWallet struct {
	pub ed25519.PublicKey
	sec ed25519.PrivateKey
}

// Generate creates a fresh random keypair.
func Generate() (*KeyWallet, error) {
	pub, sec, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &KeyWallet{pub: pub, sec: sec}, nil
}

// FromSeedHex derives a deterministic keypair from a 32-byte hex seed.
func FromSeedHex(seedHex string) (*KeyWallet, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("wallet seed must be %d hex bytes", ed25519.SeedSize)
	}
	sec := ed25519.NewKeyFromSeed(seed)
	return &KeyWallet{pub: sec.Public().(ed25519.PublicKey), sec: sec}, nil
}

// PublicKeyHex implements Wallet.
func (w *KeyWallet) PublicKeyHex() string {
	if w == nil || w.pub == nil {
		return ""
	}
	return hex.EncodeToString(w.pub)
}

// Ready implements Wallet.
func (w *KeyWallet) Ready() bool {
	return w != nil && w.pub != nil && w.sec != nil
}

// Sign implements Wallet.
func (w *KeyWallet) Sign(msg []byte) ([]byte, error) {
	if !w.Ready() {
		return nil, ErrNotInitialized
	}
	return ed25519.Sign(w.sec, msg), nil
}

// AddressPrefix tags bounty-network addresses.
const AddressPrefix = "itc1"

// AddressFromPubKeyHex derives the network address for a hex public key:
// a blake2b-160 digest of the key bytes plus a 4-byte sha256 checksum,
// hex-encoded under the network prefix.
func AddressFromPubKeyHex(pubHex string) (string, error) {
	pub, err := hex.DecodeString(pubHex)
	if err != nil || len(pub) == 0 {
		return "", ErrBadPubKey
	}
	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", ErrBadPubKey
	}
	h.Write(pub)
	body := h.Sum(nil)
	check := sha256.Sum256(body)
	return AddressPrefix + hex.EncodeToString(body) + hex.EncodeToString(check[:4]), nil
}
