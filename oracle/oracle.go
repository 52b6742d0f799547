// Package oracle adapts the external timer feed into the replicated view.
// A single feed pushes {key: "currentTime", value} entries; the adapter
// stores the latest value verbatim. Monotonicity is NOT enforced: an
// out-of-order feed produces out-of-order timestamps in bounty records,
// which is the contract's observed behavior.
package oracle

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Profay/Intercom-bounty/core/bounty"
)

// Timer is the currentTime feature subscriber.
type Timer struct{}

// HandleFeature implements bounty.FeatureHandler. Only the first
// absent-to-present transition is logged.
func (Timer) HandleFeature(ctx context.Context, view bounty.View, key string, value json.RawMessage) error {
	if key != bounty.KeyCurrentTime {
		return nil
	}
	prev, err := view.Get(ctx, key)
	if err != nil {
		return err
	}
	if prev == nil {
		log.Printf("[oracle] timer started at %s", string(value))
	}
	return view.Put(ctx, key, value)
}
