package ledger

import "testing"

func TestNewNonce_FreshAndWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		nonce, err := NewNonce()
		if err != nil {
			t.Fatalf("NewNonce failed: %v", err)
		}
		if len(nonce) != 64 {
			t.Errorf("Expected 64 hex chars but got %d", len(nonce))
		}
		if seen[nonce] {
			t.Errorf("Nonce repeated: %s", nonce)
		}
		seen[nonce] = true
	}
}

func TestBuildTxHex_Deterministic(t *testing.T) {
	h1 := BuildTxHex("net", "01", "writer", "hash", "bs", "mbs", "nonce")
	h2 := BuildTxHex("net", "01", "writer", "hash", "bs", "mbs", "nonce")
	if h1 != h2 {
		t.Errorf("Expected identical tx hex but got %s and %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("Expected 64 hex chars but got %d", len(h1))
	}
}

func TestBuildTxHex_EveryComponentBinds(t *testing.T) {
	base := BuildTxHex("net", "01", "writer", "hash", "bs", "mbs", "nonce")
	variants := []string{
		BuildTxHex("other", "01", "writer", "hash", "bs", "mbs", "nonce"),
		BuildTxHex("net", "02", "writer", "hash", "bs", "mbs", "nonce"),
		BuildTxHex("net", "01", "other", "hash", "bs", "mbs", "nonce"),
		BuildTxHex("net", "01", "writer", "other", "bs", "mbs", "nonce"),
		BuildTxHex("net", "01", "writer", "hash", "other", "mbs", "nonce"),
		BuildTxHex("net", "01", "writer", "hash", "bs", "other", "nonce"),
		BuildTxHex("net", "01", "writer", "hash", "bs", "mbs", "other"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("Variant %d should change the tx hex", i)
		}
	}
}

func TestAck_Failed(t *testing.T) {
	cases := []struct {
		ack      *Ack
		expected bool
	}{
		{nil, true},
		{&Ack{Accepted: false}, true},
		{&Ack{Accepted: true, Message: "broadcast failed upstream"}, true},
		{&Ack{Accepted: true}, false},
		{&Ack{Accepted: true, Message: "ok"}, false},
	}
	for i, tc := range cases {
		if tc.ack.Failed() != tc.expected {
			t.Errorf("Case %d: expected Failed()=%v", i, tc.expected)
		}
	}
}
