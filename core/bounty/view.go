package bounty

import (
	"context"
	"encoding/json"
)

// View is the replicated keyed store the state machine runs against.
// Get returns nil for an absent key. Putting a nil value clears the key,
// matching the contract convention of null membership markers.
type View interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}

// Overlay stages writes on top of a base view. Operations run against an
// overlay and flush only on success, so a failed operation leaves the base
// untouched (all-or-nothing per operation). An unflushed overlay also
// serves as the throwaway projection for simulated writes.
type Overlay struct {
	base   View
	staged map[string]json.RawMessage
	order  []string
}

// NewOverlay returns an empty overlay over base.
func NewOverlay(base View) *Overlay {
	return &Overlay{base: base, staged: make(map[string]json.RawMessage)}
}

// Get consults staged writes first, then the base view.
func (o *Overlay) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if v, ok := o.staged[key]; ok {
		return v, nil
	}
	return o.base.Get(ctx, key)
}

// Put stages a write. A nil value stages a clear.
func (o *Overlay) Put(_ context.Context, key string, value json.RawMessage) error {
	if _, ok := o.staged[key]; !ok {
		o.order = append(o.order, key)
	}
	o.staged[key] = value
	return nil
}

// Flush commits staged writes to the base view in the order they were
// first staged. Keyed store writes are replayed identically on every
// replica, so the commit order must be deterministic.
func (o *Overlay) Flush(ctx context.Context) error {
	for _, key := range o.order {
		if err := o.base.Put(ctx, key, o.staged[key]); err != nil {
			return err
		}
	}
	return nil
}

// View keys.
const (
	KeyCounter     = "bountyCounter"
	KeyCurrentTime = "currentTime"
	KeyTxEnabled   = "txen"
	KeyChatLast    = "chat_last"
)

func bountyKey(id string) string { return "bounties/" + id }

func indexKey(status, id string) string { return "bountyIndex/" + status + "/" + id }

func userKey(addr, kind, id string) string { return "userBounties/" + addr + "/" + kind + "/" + id }
