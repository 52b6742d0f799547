// Package ledger turns a typed client intent into a canonically hashed,
// nonce-bound, signed transaction envelope and hands it to the validator
// network, with admission gating and local duplicate suppression.
package ledger

import (
	"context"
	"log"
	"strings"
)

// Err is a simple string error helper.
type Err string

func (e Err) Error() string { return string(e) }

var (
	ErrNoValidators         = Err("No connected validators. TX would be dropped. Wait for validator connectivity. For reads use simulation.")
	ErrTransactionsDisabled = Err("Tx is not enabled.")
	ErrWriterNotInitialized = Err("Local writer is not initialized.")
	ErrInvalidTransaction   = Err("Invalid transaction object.")
	ErrBroadcastFailed      = Err("Transaction broadcast failed. Ensure validators are reachable.")
)

// Ack is the gateway's broadcast response. A nil Ack, Accepted == false,
// or an error-shaped message all count as failure.
type Ack struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

// Failed reports whether an ack indicates a failed broadcast.
func (a *Ack) Failed() bool {
	if a == nil || !a.Accepted {
		return true
	}
	return strings.Contains(strings.ToLower(a.Message), "failed")
}

// Gateway is the validator network interface the pipeline broadcasts
// through. Connectivity, versioning, and bootstrap identifiers all come
// from here; consensus itself is external.
type Gateway interface {
	NetworkID() string
	BootstrapHex() string
	ConnectedValidatorCount() int
	TxVersionHex(ctx context.Context) (string, error)
	Broadcast(ctx context.Context, payload *Payload) (*Ack, error)
}

// LoopbackGateway is a single-writer development gateway: it reports one
// connected validator and accepts every broadcast. An optional admit hook
// lets the process apply its own accepted operations, which is how a
// writable dev peer replays without a validator network.
type LoopbackGateway struct {
	networkID    string
	bootstrapHex string
	txVersion    string
	validators   int
	onAccept     func(ctx context.Context, payload *Payload)
}

// NewLoopbackGateway returns a loopback gateway with the given identifiers.
func NewLoopbackGateway(networkID, bootstrapHex, txVersion string) *LoopbackGateway {
	return &LoopbackGateway{
		networkID:    networkID,
		bootstrapHex: bootstrapHex,
		txVersion:    txVersion,
		validators:   1,
	}
}

// SetValidators overrides the reported validator count (0 simulates a
// disconnected network).
func (g *LoopbackGateway) SetValidators(n int) { g.validators = n }

// OnAccept registers a hook invoked for every accepted broadcast.
func (g *LoopbackGateway) OnAccept(fn func(ctx context.Context, payload *Payload)) { g.onAccept = fn }

// NetworkID implements Gateway.
func (g *LoopbackGateway) NetworkID() string { return g.networkID }

// BootstrapHex implements Gateway.
func (g *LoopbackGateway) BootstrapHex() string { return g.bootstrapHex }

// ConnectedValidatorCount implements Gateway.
func (g *LoopbackGateway) ConnectedValidatorCount() int { return g.validators }

// TxVersionHex implements Gateway.
func (g *LoopbackGateway) TxVersionHex(context.Context) (string, error) { return g.txVersion, nil }

// Broadcast implements Gateway.
func (g *LoopbackGateway) Broadcast(ctx context.Context, payload *Payload) (*Ack, error) {
	if g.validators <= 0 {
		return &Ack{Accepted: false, Message: "broadcast failed: no validators"}, nil
	}
	log.Printf("[ledger] loopback accepted tx %s from %s", payload.Txo.Tx, payload.Address)
	if g.onAccept != nil {
		g.onAccept(ctx, payload)
	}
	return &Ack{Accepted: true}, nil
}
