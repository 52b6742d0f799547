package bounty

import (
	"context"
	"encoding/json"
	"strconv"
)

// Read operations never mutate state. They fold over the counter range
// [1, counter] so enumeration order is always numeric id order, never map
// order.

// GetBounty resolves a single bounty by id.
func (e *Engine) GetBounty(ctx context.Context, id string) (*Bounty, error) {
	return getBounty(ctx, e.view, id)
}

// ListBounties returns every bounty in id order.
func (e *Engine) ListBounties(ctx context.Context) ([]Bounty, error) {
	return e.fold(ctx, func(context.Context, *Bounty) (bool, error) { return true, nil })
}

// GetMyBounties returns bounties posted by actor, in id order.
func (e *Engine) GetMyBounties(ctx context.Context, actor string) ([]Bounty, error) {
	return e.fold(ctx, func(ctx context.Context, b *Bounty) (bool, error) {
		return e.hasMarker(ctx, userKey(actor, "posted", b.ID))
	})
}

// GetMyClaimedBounties returns bounties claimed by actor, in id order.
func (e *Engine) GetMyClaimedBounties(ctx context.Context, actor string) ([]Bounty, error) {
	return e.fold(ctx, func(ctx context.Context, b *Bounty) (bool, error) {
		return e.hasMarker(ctx, userKey(actor, "claimed", b.ID))
	})
}

// GetBountyStats tallies bounty counts per status plus a total.
func (e *Engine) GetBountyStats(ctx context.Context) (Stats, error) {
	var stats Stats
	all, err := e.ListBounties(ctx)
	if err != nil {
		return stats, err
	}
	for _, b := range all {
		stats.Total++
		switch b.Status {
		case StatusOpen:
			stats.Open++
		case StatusClaimed:
			stats.Claimed++
		case StatusSubmitted:
			stats.Submitted++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (e *Engine) fold(ctx context.Context, keep func(context.Context, *Bounty) (bool, error)) ([]Bounty, error) {
	counter, err := getCounter(ctx, e.view)
	if err != nil {
		return nil, err
	}
	out := make([]Bounty, 0, counter)
	for i := 1; i <= counter; i++ {
		b, err := getBounty(ctx, e.view, "bounty_"+strconv.Itoa(i))
		if err == ErrBountyNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		ok, err := keep(ctx, b)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (e *Engine) hasMarker(ctx context.Context, key string) (bool, error) {
	raw, err := e.view.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	var set bool
	if err := json.Unmarshal(raw, &set); err != nil {
		return false, nil
	}
	return set, nil
}
