package ledger

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// OperationTypeTx marks a transaction payload for validator admission.
const OperationTypeTx = "tx"

// Intent is a typed client intention: an operation name plus its
// schema-validated payload. ReadOnly intents are forced into simulation.
type Intent struct {
	Type     string          `json:"type"`
	Value    json.RawMessage `json:"value"`
	ReadOnly bool            `json:"-"`
}

// TxObject carries the signed transaction envelope fields as broadcast to
// validators. Field names follow the wire protocol.
type TxObject struct {
	Tx  string `json:"tx"`  // canonical transaction hex
	Txv string `json:"txv"` // transaction-version tag
	Iw  string `json:"iw"`  // writer key
	In  string `json:"in"`  // nonce
	Ch  string `json:"ch"`  // content hash of {type, value}
	Is  string `json:"is"`  // signature over the canonical tx
	Bs  string `json:"bs"`  // subnet bootstrap hex
	Mbs string `json:"mbs"` // settlement network bootstrap hex
}

// Payload is the unit handed to the gateway for broadcast. Envelopes are
// never mutated after signing.
type Payload struct {
	Type    string   `json:"type"`
	Address string   `json:"address"`
	Txo     TxObject `json:"txo"`
}

// Surrogate carries a pre-signed envelope for cases where signing happens
// out of process.
type Surrogate struct {
	Nonce     string `json:"nonce"`
	Tx        string `json:"tx"`
	Signature string `json:"signature"`
	Address   string `json:"address"` // signer public key hex
}

// NewNonce returns a fresh random 32-byte hex token, unique per
// submission. A retry after BroadcastFailed must construct a new envelope
// with a new nonce.
func NewNonce() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// BuildTxHex derives the canonical transaction hex binding the envelope to
// its network, version, writer, content, bootstraps, and nonce. The same
// inputs always produce the same hex, which doubles as the pending-pool
// dedup key.
func BuildTxHex(networkID, txvHex, writerKey, contentHash, subnetBootstrapHex, msbBootstrapHex, nonceHex string) string {
	joined := strings.Join([]string{
		networkID, txvHex, writerKey, contentHash, subnetBootstrapHex, msbBootstrapHex, nonceHex,
	}, "|")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
