package sim

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/ledger"
	store "github.com/Profay/Intercom-bounty/storage/bounty"
)

func newTestRunner(t *testing.T) (*Runner, *store.MemoryStore, *bounty.Engine) {
	t.Helper()
	st := store.NewMemoryStore()
	if err := st.Put(context.Background(), bounty.KeyCurrentTime, json.RawMessage("1000")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	engine := bounty.NewEngine(st)
	runner := NewRunner(engine, st, func() string { return "alice" })
	return runner, st, engine
}

func TestSimulate_WriteIntentLeavesStateUntouched(t *testing.T) {
	runner, st, engine := newTestRunner(t)
	ctx := context.Background()

	before := st.Len()
	out, err := runner.Simulate(ctx, ledger.Intent{
		Type:  bounty.OpPostBounty,
		Value: json.RawMessage(`{"op":"post_bounty","title":"t","description":"d","reward":"10"}`),
	})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !strings.Contains(out, "no state written") {
		t.Errorf("Expected no-state-written notice but got %s", out)
	}
	if st.Len() != before {
		t.Errorf("Expected %d keys after simulation but got %d", before, st.Len())
	}
	if _, err := engine.GetBounty(ctx, "bounty_1"); !errors.Is(err, bounty.ErrBountyNotFound) {
		t.Error("Simulated bounty should not exist")
	}
}

func TestSimulate_WriteIntentStillValidates(t *testing.T) {
	runner, _, _ := newTestRunner(t)

	_, err := runner.Simulate(context.Background(), ledger.Intent{
		Type:  bounty.OpPostBounty,
		Value: json.RawMessage(`{"op":"post_bounty","title":"t","description":"d","reward":"0"}`),
	})
	if !errors.Is(err, bounty.ErrRewardNotPositive) {
		t.Errorf("Expected %v but got %v", bounty.ErrRewardNotPositive, err)
	}
}

func TestSimulate_GetBounty(t *testing.T) {
	runner, _, engine := newTestRunner(t)
	ctx := context.Background()

	if err := engine.Apply(ctx, "bob", bounty.OpPostBounty,
		json.RawMessage(`{"op":"post_bounty","title":"Find bug","description":"d","reward":"50"}`)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, err := runner.Simulate(ctx, ledger.Intent{
		Type:     bounty.OpGetBounty,
		Value:    json.RawMessage(`{"op":"get_bounty","bountyId":"bounty_1"}`),
		ReadOnly: true,
	})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !strings.Contains(out, `"id": "bounty_1"`) || !strings.Contains(out, "Find bug") {
		t.Errorf("Expected rendered bounty but got %s", out)
	}

	out, err = runner.Simulate(ctx, ledger.Intent{
		Type:     bounty.OpGetBounty,
		Value:    json.RawMessage(`{"op":"get_bounty","bountyId":"bounty_9"}`),
		ReadOnly: true,
	})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if out != "Bounty not found: bounty_9" {
		t.Errorf("Expected not-found message but got %s", out)
	}
}

func TestSimulate_ListAndStats(t *testing.T) {
	runner, _, engine := newTestRunner(t)
	ctx := context.Background()

	if err := engine.Apply(ctx, "bob", bounty.OpPostBounty,
		json.RawMessage(`{"op":"post_bounty","title":"one","description":"d","reward":"5"}`)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := engine.Apply(ctx, "alice", bounty.OpPostBounty,
		json.RawMessage(`{"op":"post_bounty","title":"two","description":"d","reward":"5"}`)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, err := runner.Simulate(ctx, ledger.Intent{Type: bounty.OpListBounties, Value: json.RawMessage("null"), ReadOnly: true})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !strings.Contains(out, "Total bounties: 2") {
		t.Errorf("Expected total line but got %s", out)
	}

	out, err = runner.Simulate(ctx, ledger.Intent{Type: bounty.OpGetMyBounties, Value: json.RawMessage("null"), ReadOnly: true})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !strings.Contains(out, "Your posted bounties: 1") || !strings.Contains(out, "two") {
		t.Errorf("Expected alice's posted bounty but got %s", out)
	}

	out, err = runner.Simulate(ctx, ledger.Intent{Type: bounty.OpGetBountyStats, Value: json.RawMessage("null"), ReadOnly: true})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !strings.Contains(out, `"total": 2`) || !strings.Contains(out, `"open": 2`) {
		t.Errorf("Expected stats rendering but got %s", out)
	}
}
