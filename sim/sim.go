// Package sim evaluates intents without any network effect: reads run
// against the live view, writes against a throwaway overlay that is never
// flushed. Nothing a simulation does survives beyond its rendered output.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/ledger"
)

// Runner implements ledger.Simulator over the bounty engine.
type Runner struct {
	engine *bounty.Engine
	view   bounty.View
	actor  func() string
}

// NewRunner returns a runner. actor supplies the caller's address at
// evaluation time (the wallet may initialize after wiring).
func NewRunner(engine *bounty.Engine, view bounty.View, actor func() string) *Runner {
	return &Runner{engine: engine, view: view, actor: actor}
}

// Simulate implements ledger.Simulator.
func (r *Runner) Simulate(ctx context.Context, intent ledger.Intent) (string, error) {
	switch intent.Type {
	case bounty.OpGetBounty:
		var v bounty.ClaimBountyValue
		if err := json.Unmarshal(intent.Value, &v); err != nil {
			return "", fmt.Errorf("%w: %v", bounty.ErrBadPayload, err)
		}
		b, err := r.engine.GetBounty(ctx, v.BountyID)
		if err == bounty.ErrBountyNotFound {
			return "Bounty not found: " + v.BountyID, nil
		}
		if err != nil {
			return "", err
		}
		return renderJSON(b)

	case bounty.OpListBounties:
		all, err := r.engine.ListBounties(ctx)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Total bounties: %d", len(all))
		for _, b := range all {
			writeBountyLine(&sb, b)
		}
		return sb.String(), nil

	case bounty.OpGetMyBounties:
		mine, err := r.engine.GetMyBounties(ctx, r.actor())
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Your posted bounties: %d", len(mine))
		for _, b := range mine {
			writeBountyLine(&sb, b)
		}
		return sb.String(), nil

	case bounty.OpGetMyClaimedBounties:
		mine, err := r.engine.GetMyClaimedBounties(ctx, r.actor())
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Your claimed bounties: %d", len(mine))
		for _, b := range mine {
			writeBountyLine(&sb, b)
		}
		return sb.String(), nil

	case bounty.OpGetBountyStats:
		stats, err := r.engine.GetBountyStats(ctx)
		if err != nil {
			return "", err
		}
		return renderJSON(stats)
	}

	// Write intent: run the state machine against a throwaway projection
	// and discard every staged write.
	ov := bounty.NewOverlay(r.view)
	if err := r.engine.ApplyTo(ctx, ov, r.actor(), intent.Type, intent.Value); err != nil {
		return "", err
	}
	return fmt.Sprintf("simulated %s: ok (no state written)", intent.Type), nil
}

func writeBountyLine(sb *strings.Builder, b bounty.Bounty) {
	fmt.Fprintf(sb, "\n%s: %s (%s) reward=%s poster=%s", b.ID, b.Title, b.Status, b.Reward, b.Poster)
	if b.Claimer != nil {
		fmt.Fprintf(sb, " claimer=%s", *b.Claimer)
	}
}

func renderJSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
