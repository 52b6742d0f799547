package bounty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/big"
	"strconv"
)

// Engine is the deterministic bounty state machine. Operations admitted by
// the replicated log are applied one at a time in ledger order; every
// replica that observes the same prefix reaches byte-identical state.
type Engine struct {
	view View
}

// NewEngine returns an engine over the given replicated view.
func NewEngine(view View) *Engine {
	return &Engine{view: view}
}

// Apply executes a single admitted operation for actor against the store.
// The operation is atomic: all writes are staged on an overlay and flushed
// only if every assertion passed. Any failure leaves prior state untouched.
func (e *Engine) Apply(ctx context.Context, actor, opType string, value json.RawMessage) error {
	ov := NewOverlay(e.view)
	if err := e.ApplyTo(ctx, ov, actor, opType, value); err != nil {
		return err
	}
	return ov.Flush(ctx)
}

// ApplyTo runs the operation against an explicit overlay without flushing.
// The simulation path uses this to evaluate writes on a throwaway
// projection.
func (e *Engine) ApplyTo(ctx context.Context, ov *Overlay, actor, opType string, value json.RawMessage) error {
	switch opType {
	case OpPostBounty:
		return e.postBounty(ctx, ov, actor, value)
	case OpClaimBounty:
		return e.claimBounty(ctx, ov, actor, value)
	case OpSubmitWork:
		return e.submitWork(ctx, ov, actor, value)
	case OpApproveBounty:
		return e.approveBounty(ctx, ov, actor, value)
	case OpRejectBounty:
		return e.rejectBounty(ctx, ov, actor, value)
	case OpCancelBounty:
		return e.cancelBounty(ctx, ov, actor, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, opType)
	}
}

func (e *Engine) postBounty(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v PostBountyValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}
	currentTime, err := ov.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}

	reward, ok := new(big.Int).SetString(v.Reward, 10)
	if !ok {
		return ErrInvalidAmount
	}
	if reward.Sign() <= 0 {
		return ErrRewardNotPositive
	}

	counter, err := getCounter(ctx, ov)
	if err != nil {
		return err
	}
	counter++
	id := "bounty_" + strconv.Itoa(counter)

	b := Bounty{
		ID:          id,
		Title:       v.Title,
		Description: v.Description,
		Reward:      v.Reward,
		Poster:      actor,
		Status:      StatusOpen,
		CreatedAt:   currentTime,
	}
	if err := putBounty(ctx, ov, &b); err != nil {
		return err
	}
	if err := ov.Put(ctx, KeyCounter, json.RawMessage(strconv.Itoa(counter))); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusOpen, id), trueMarker()); err != nil {
		return err
	}
	if err := ov.Put(ctx, userKey(actor, "posted", id), trueMarker()); err != nil {
		return err
	}

	log.Printf("[bounty] posted %s by %s reward=%s", id, actor, v.Reward)
	return nil
}

func (e *Engine) claimBounty(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v ClaimBountyValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}
	currentTime, err := ov.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}

	b, err := getBounty(ctx, ov, v.BountyID)
	if err != nil {
		return err
	}
	if b.Status != StatusOpen {
		return ErrNotAvailable
	}
	if b.Poster == actor {
		return ErrOwnBounty
	}

	b.Status = StatusClaimed
	b.Claimer = &actor
	b.ClaimedAt = currentTime

	if err := putBounty(ctx, ov, b); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusOpen, b.ID), nil); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusClaimed, b.ID), trueMarker()); err != nil {
		return err
	}
	if err := ov.Put(ctx, userKey(actor, "claimed", b.ID), trueMarker()); err != nil {
		return err
	}

	log.Printf("[bounty] claimed %s by %s", b.ID, actor)
	return nil
}

func (e *Engine) submitWork(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v SubmitWorkValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}
	currentTime, err := ov.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}

	b, err := getBounty(ctx, ov, v.BountyID)
	if err != nil {
		return err
	}
	if b.Status != StatusClaimed {
		return ErrNotClaimed
	}
	if b.Claimer == nil || *b.Claimer != actor {
		return ErrNotClaimer
	}

	b.Status = StatusSubmitted
	b.Proof = &v.Proof
	b.SubmittedAt = currentTime

	if err := putBounty(ctx, ov, b); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusClaimed, b.ID), nil); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusSubmitted, b.ID), trueMarker()); err != nil {
		return err
	}

	log.Printf("[bounty] work submitted for %s", b.ID)
	return nil
}

func (e *Engine) approveBounty(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v ClaimBountyValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}
	currentTime, err := ov.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}

	b, err := getBounty(ctx, ov, v.BountyID)
	if err != nil {
		return err
	}
	if b.Status != StatusSubmitted {
		return ErrNoSubmission
	}
	if b.Poster != actor {
		return ErrNotPosterApprove
	}

	b.Status = StatusCompleted
	b.CompletedAt = currentTime

	if err := putBounty(ctx, ov, b); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusSubmitted, b.ID), nil); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusCompleted, b.ID), trueMarker()); err != nil {
		return err
	}

	// Fund release to the claimer is a settlement-network effect downstream
	// of this transition, not performed here.
	log.Printf("[bounty] approved %s, reward %s released to %s", b.ID, b.Reward, strDeref(b.Claimer))
	return nil
}

func (e *Engine) rejectBounty(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v RejectBountyValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}

	b, err := getBounty(ctx, ov, v.BountyID)
	if err != nil {
		return err
	}
	if b.Status != StatusSubmitted {
		return ErrNoSubmission
	}
	if b.Poster != actor {
		return ErrNotPosterReject
	}

	// Rework loop: the worker keeps the claim, only the submission is
	// discarded.
	b.Status = StatusClaimed
	b.Proof = nil
	b.RejectionReason = &v.Reason
	b.SubmittedAt = nil

	if err := putBounty(ctx, ov, b); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusSubmitted, b.ID), nil); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusClaimed, b.ID), trueMarker()); err != nil {
		return err
	}

	log.Printf("[bounty] rejected %s: %s", b.ID, v.Reason)
	return nil
}

func (e *Engine) cancelBounty(ctx context.Context, ov *Overlay, actor string, value json.RawMessage) error {
	var v ClaimBountyValue
	if err := decodeStrict(value, &v); err != nil {
		return err
	}
	currentTime, err := ov.Get(ctx, KeyCurrentTime)
	if err != nil {
		return err
	}

	b, err := getBounty(ctx, ov, v.BountyID)
	if err != nil {
		return err
	}
	if b.Poster != actor {
		return ErrNotPosterCancel
	}
	if b.Status != StatusOpen {
		return ErrNotCancellable
	}

	b.Status = StatusCancelled
	b.CompletedAt = currentTime

	if err := putBounty(ctx, ov, b); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusOpen, b.ID), nil); err != nil {
		return err
	}
	if err := ov.Put(ctx, indexKey(StatusCancelled, b.ID), trueMarker()); err != nil {
		return err
	}

	log.Printf("[bounty] cancelled %s", b.ID)
	return nil
}

// decodeStrict parses an operation value, rejecting unknown fields and
// trailing data. The router validates payloads before broadcast, but the
// engine re-parses on replay so that every replica rejects a malformed
// admitted value identically.
func decodeStrict(raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return fmt.Errorf("%w: trailing data after payload", ErrBadPayload)
	}
	return nil
}

func getCounter(ctx context.Context, v View) (int, error) {
	raw, err := v.Get(ctx, KeyCounter)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("corrupt bounty counter: %w", err)
	}
	return n, nil
}

func getBounty(ctx context.Context, v View, id string) (*Bounty, error) {
	raw, err := v.Get(ctx, bountyKey(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrBountyNotFound
	}
	var b Bounty
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("corrupt bounty record %s: %w", id, err)
	}
	return &b, nil
}

func putBounty(ctx context.Context, v View, b *Bounty) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return v.Put(ctx, bountyKey(b.ID), raw)
}

func trueMarker() json.RawMessage { return json.RawMessage("true") }

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
