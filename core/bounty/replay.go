package bounty

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Entry is a single admitted record from the replicated operation log.
// Contract operations carry Address/Type/Value, feature feeds carry
// Key/Value, and chat messages carry Type "msg" with Msg/Address.
type Entry struct {
	Address string          `json:"address,omitempty"`
	Type    string          `json:"type,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Key     string          `json:"key,omitempty"`
	Msg     string          `json:"msg,omitempty"`
}

// FeatureHandler consumes an external feature feed entry (for example the
// time oracle). Handlers run synchronously inside the replay loop and
// receive the view explicitly.
type FeatureHandler interface {
	HandleFeature(ctx context.Context, view View, key string, value json.RawMessage) error
}

// MessageHandler consumes a chat message entry.
type MessageHandler interface {
	HandleMessage(ctx context.Context, view View, e Entry) error
}

// Driver replays admitted log entries strictly sequentially. It is the
// only writer of the bounty store; an aborted operation is a no-op on
// every replica identically. Concurrent callers are serialized so no
// entry ever reads another's intermediate state.
type Driver struct {
	mu        sync.Mutex
	engine    *Engine
	view      View
	features  []FeatureHandler
	messages  []MessageHandler
	onApplied func(opType string, err error)
}

// NewDriver returns a replay driver over the engine's view.
func NewDriver(engine *Engine, view View) *Driver {
	return &Driver{engine: engine, view: view}
}

// AddFeature registers a feature feed subscriber.
func (d *Driver) AddFeature(h FeatureHandler) { d.features = append(d.features, h) }

// AddMessageHandler registers a chat message subscriber.
func (d *Driver) AddMessageHandler(h MessageHandler) { d.messages = append(d.messages, h) }

// OnApplied registers an observer invoked after every contract operation
// with its outcome.
func (d *Driver) OnApplied(fn func(opType string, err error)) { d.onApplied = fn }

// Process dispatches one admitted entry. Contract operation failures are
// returned after being recorded; the entry has already been admitted, so
// the failure means "deterministically rejected", not "retry".
func (d *Driver) Process(ctx context.Context, e Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case e.Key != "":
		if len(e.Key) > 256 {
			return fmt.Errorf("%w: feature key too long", ErrBadPayload)
		}
		for _, h := range d.features {
			if err := h.HandleFeature(ctx, d.view, e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	case e.Type == "msg":
		for _, h := range d.messages {
			if err := h.HandleMessage(ctx, d.view, e); err != nil {
				return err
			}
		}
		return nil
	default:
		err := d.engine.Apply(ctx, e.Address, e.Type, e.Value)
		if d.onApplied != nil {
			d.onApplied(e.Type, err)
		}
		if err != nil {
			log.Printf("[bounty] op %s from %s rejected: %v", e.Type, e.Address, err)
		}
		return err
	}
}

// ChatRecorder stores the latest chat message under chat_last, stamped
// with the time oracle's current value.
type ChatRecorder struct{}

type chatLast struct {
	Msg     string          `json:"msg"`
	Address *string         `json:"address"`
	At      json.RawMessage `json:"at"`
}

// HandleMessage implements MessageHandler.
func (ChatRecorder) HandleMessage(ctx context.Context, view View, e Entry) error {
	if e.Msg == "" {
		return nil
	}
	at, err := view.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}
	rec := chatLast{Msg: e.Msg, At: at}
	if e.Address != "" {
		addr := e.Address
		rec.Address = &addr
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return view.Put(ctx, KeyChatLast, raw)
}
