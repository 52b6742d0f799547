package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"
)

const testSeed = "0101010101010101010101010101010101010101010101010101010101010101"

func TestFromSeedHex_Deterministic(t *testing.T) {
	w1, err := FromSeedHex(testSeed)
	if err != nil {
		t.Fatalf("FromSeedHex failed: %v", err)
	}
	w2, err := FromSeedHex(testSeed)
	if err != nil {
		t.Fatalf("FromSeedHex failed: %v", err)
	}
	if w1.PublicKeyHex() != w2.PublicKeyHex() {
		t.Error("Same seed should derive the same public key")
	}
	if !w1.Ready() {
		t.Error("Seeded wallet should be ready")
	}
}

func TestFromSeedHex_RejectsBadSeeds(t *testing.T) {
	badSeeds := []string{
		"",
		"01",
		"zz",
		testSeed + "00",
	}
	for _, seed := range badSeeds {
		if _, err := FromSeedHex(seed); err == nil {
			t.Errorf("FromSeedHex should reject seed %q", seed)
		}
	}
}

func TestSign_VerifiesAgainstPublicKey(t *testing.T) {
	w, err := FromSeedHex(testSeed)
	if err != nil {
		t.Fatalf("FromSeedHex failed: %v", err)
	}

	msg := []byte("canonical tx bytes")
	sig, err := w.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	pub, _ := hex.DecodeString(w.PublicKeyHex())
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		t.Error("Signature should verify against the wallet public key")
	}
}

func TestNilWallet_NotReady(t *testing.T) {
	var w *KeyWallet
	if w.Ready() {
		t.Error("Nil wallet should not be ready")
	}
	if w.PublicKeyHex() != "" {
		t.Error("Nil wallet should have empty public key")
	}
	w = &KeyWallet{}
	if _, err := w.Sign([]byte("x")); err != ErrNotInitialized {
		t.Errorf("Expected %v but got %v", ErrNotInitialized, err)
	}
}

func TestAddressFromPubKeyHex_Shape(t *testing.T) {
	w, err := FromSeedHex(testSeed)
	if err != nil {
		t.Fatalf("FromSeedHex failed: %v", err)
	}

	addr, err := AddressFromPubKeyHex(w.PublicKeyHex())
	if err != nil {
		t.Fatalf("AddressFromPubKeyHex failed: %v", err)
	}
	if !strings.HasPrefix(addr, AddressPrefix) {
		t.Errorf("Address should carry prefix %s: %s", AddressPrefix, addr)
	}
	// prefix + 20-byte digest + 4-byte checksum, hex encoded
	if len(addr) != len(AddressPrefix)+40+8 {
		t.Errorf("Expected address length %d but got %d", len(AddressPrefix)+48, len(addr))
	}

	again, err := AddressFromPubKeyHex(w.PublicKeyHex())
	if err != nil {
		t.Fatalf("AddressFromPubKeyHex failed: %v", err)
	}
	if addr != again {
		t.Error("Address derivation should be deterministic")
	}
}

func TestAddressFromPubKeyHex_RejectsBadKeys(t *testing.T) {
	badKeys := []string{"", "zz", "0g"}
	for _, key := range badKeys {
		if _, err := AddressFromPubKeyHex(key); err != ErrBadPubKey {
			t.Errorf("Key %q: expected %v but got %v", key, ErrBadPubKey, err)
		}
	}
}

func TestAddressFromPubKeyHex_DifferentKeysDiffer(t *testing.T) {
	w1, _ := FromSeedHex(testSeed)
	w2, _ := FromSeedHex("0202020202020202020202020202020202020202020202020202020202020202")

	a1, _ := AddressFromPubKeyHex(w1.PublicKeyHex())
	a2, _ := AddressFromPubKeyHex(w2.PublicKeyHex())
	if a1 == a2 {
		t.Error("Different keys should derive different addresses")
	}
}
