package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Profay/Intercom-bounty/canon"
	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/metrics"
	"github.com/Profay/Intercom-bounty/wallet"
)

// Simulator evaluates an intent read-only, against a throwaway projection,
// producing display output without any network effect.
type Simulator interface {
	Simulate(ctx context.Context, intent Intent) (string, error)
}

// Result is the outcome of a pipeline submission: either a simulation
// output or the broadcast payload.
type Result struct {
	Simulated bool
	Output    string
	Payload   *Payload
}

// Pipeline gates, constructs, signs, and broadcasts transaction envelopes.
// It never mutates bounty state directly; state changes only happen once
// the ledger admits the envelope and the replay driver applies it.
type Pipeline struct {
	gateway         Gateway
	wallet          wallet.Wallet
	view            bounty.View
	pool            *TxPool
	simulator       Simulator
	writerKey       string
	subnetBootstrap string
}

// NewPipeline wires a pipeline. writerKey is the local writer identity on
// the subnet log; subnetBootstrapHex identifies the subnet log itself, as
// opposed to the settlement network bootstrap the gateway reports.
func NewPipeline(gateway Gateway, w wallet.Wallet, view bounty.View, pool *TxPool, simulator Simulator, writerKey, subnetBootstrapHex string) *Pipeline {
	return &Pipeline{
		gateway:         gateway,
		wallet:          w,
		view:            view,
		pool:            pool,
		simulator:       simulator,
		writerKey:       writerKey,
		subnetBootstrap: strings.ToLower(subnetBootstrapHex),
	}
}

// Submit gates and dispatches one intent. Read-only intents always
// simulate. A nil error with Result.Simulated == false means the gateway
// accepted the broadcast; there is no automatic retry, a retry needs a
// fresh envelope with a fresh nonce.
func (p *Pipeline) Submit(ctx context.Context, intent Intent, sim bool, surrogate *Surrogate) (*Result, error) {
	if intent.ReadOnly && !sim {
		log.Printf("[ledger] read command %s forced into simulation mode", intent.Type)
		sim = true
	}

	if !sim && !intent.ReadOnly {
		if p.gateway.ConnectedValidatorCount() <= 0 {
			return nil, ErrNoValidators
		}
	}

	enabled, err := p.transactionsEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrTransactionsDisabled
	}
	if p.wallet == nil || !p.wallet.Ready() || p.wallet.PublicKeyHex() == "" {
		return nil, wallet.ErrNotInitialized
	}
	if p.writerKey == "" {
		return nil, ErrWriterNotInitialized
	}
	if intent.Type == "" || intent.Value == nil {
		return nil, ErrInvalidTransaction
	}

	if sim {
		out, err := p.simulator.Simulate(ctx, intent)
		if err != nil {
			return nil, err
		}
		return &Result{Simulated: true, Output: out}, nil
	}

	payload, txHex, pubKeyHex, err := p.buildPayload(ctx, intent, surrogate)
	if err != nil {
		return nil, err
	}

	ack, err := p.gateway.Broadcast(ctx, payload)
	if err != nil || ack.Failed() {
		metrics.TxBroadcastFailures.Inc()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
		}
		return nil, ErrBroadcastFailed
	}
	metrics.TxBroadcasts.Inc()

	// At-most-once local tracking; a full pool drops silently, the
	// broadcast above already happened exactly once.
	if p.pool.IsNotFull() && !p.pool.Contains(txHex) {
		p.pool.Add(txHex, PoolEntry{Dispatch: intent, IPK: pubKeyHex, Address: payload.Address})
	}
	metrics.TxPoolSize.Set(float64(p.pool.Len()))

	return &Result{Payload: payload}, nil
}

func (p *Pipeline) buildPayload(ctx context.Context, intent Intent, surrogate *Surrogate) (*Payload, string, string, error) {
	txvHex, err := p.gateway.TxVersionHex(ctx)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
	}
	msbBootstrapHex := p.gateway.BootstrapHex()
	subnetBootstrapHex := p.subnetBootstrap

	contentHash, err := canon.HashHex(map[string]any{
		"type":  intent.Type,
		"value": intent.Value,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	var nonceHex, txHex, signatureHex, pubKeyHex string
	if surrogate != nil {
		nonceHex = surrogate.Nonce
		txHex = surrogate.Tx
		signatureHex = surrogate.Signature
		pubKeyHex = surrogate.Address
	} else {
		nonceHex, err = NewNonce()
		if err != nil {
			return nil, "", "", err
		}
		txHex = BuildTxHex(p.gateway.NetworkID(), txvHex, p.writerKey, contentHash, subnetBootstrapHex, msbBootstrapHex, nonceHex)
		txBytes, err := hex.DecodeString(txHex)
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
		}
		sig, err := p.wallet.Sign(txBytes)
		if err != nil {
			return nil, "", "", err
		}
		signatureHex = hex.EncodeToString(sig)
		pubKeyHex = p.wallet.PublicKeyHex()
	}

	address, err := wallet.AddressFromPubKeyHex(pubKeyHex)
	if err != nil {
		return nil, "", "", err
	}

	payload := &Payload{
		Type:    OperationTypeTx,
		Address: address,
		Txo: TxObject{
			Tx:  txHex,
			Txv: txvHex,
			Iw:  p.writerKey,
			In:  nonceHex,
			Ch:  contentHash,
			Is:  signatureHex,
			Bs:  subnetBootstrapHex,
			Mbs: msbBootstrapHex,
		},
	}
	return payload, txHex, pubKeyHex, nil
}

// transactionsEnabled reads the txen flag; an absent flag defaults to
// enabled.
func (p *Pipeline) transactionsEnabled(ctx context.Context) (bool, error) {
	raw, err := p.view.Get(ctx, bounty.KeyTxEnabled)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return true, nil
	}
	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		return false, nil
	}
	return enabled, nil
}

