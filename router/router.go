// Package router maps a human-issued command string to a typed ledger
// intent. Two surfaces are supported: fixed keywords for the read-only
// operations, and a JSON object with an "op" discriminator for everything
// else. Unknown keywords or ops are hard rejections with no fallback.
package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/ledger"
)

// Err is a simple string error helper.
type Err string

func (e Err) Error() string { return string(e) }

var (
	ErrUnknownCommand = Err("command not found")
	ErrValidation     = Err("invalid command payload")
)

// Map translates a command into a validated intent. Payloads are checked
// strictly at construction time: unknown fields and out-of-range lengths
// are rejected before anything reaches the pipeline.
func Map(command string) (ledger.Intent, error) {
	switch strings.TrimSpace(command) {
	case "list_bounties":
		return readIntent(bounty.OpListBounties), nil
	case "my_bounties":
		return readIntent(bounty.OpGetMyBounties), nil
	case "my_work":
		return readIntent(bounty.OpGetMyClaimedBounties), nil
	case "stats":
		return readIntent(bounty.OpGetBountyStats), nil
	}

	var probe struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal([]byte(command), &probe); err != nil || probe.Op == "" {
		return ledger.Intent{}, ErrUnknownCommand
	}

	switch probe.Op {
	case "post_bounty":
		var v bounty.PostBountyValue
		if err := decodeValue(command, &v); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("op", v.Op, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("title", v.Title, 1, 200); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("description", v.Description, 1, 2000); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("reward", v.Reward, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpPostBounty, v)

	case "claim_bounty":
		v, err := decodeIDValue(command)
		if err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpClaimBounty, v)

	case "submit_work":
		var v bounty.SubmitWorkValue
		if err := decodeValue(command, &v); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("op", v.Op, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("bountyId", v.BountyID, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("proof", v.Proof, 1, 5000); err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpSubmitWork, v)

	case "approve_bounty":
		v, err := decodeIDValue(command)
		if err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpApproveBounty, v)

	case "reject_bounty":
		var v bounty.RejectBountyValue
		if err := decodeValue(command, &v); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("op", v.Op, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("bountyId", v.BountyID, 1, 128); err != nil {
			return ledger.Intent{}, err
		}
		if err := checkLen("reason", v.Reason, 1, 1000); err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpRejectBounty, v)

	case "cancel_bounty":
		v, err := decodeIDValue(command)
		if err != nil {
			return ledger.Intent{}, err
		}
		return writeIntent(bounty.OpCancelBounty, v)

	case "get_bounty":
		v, err := decodeIDValue(command)
		if err != nil {
			return ledger.Intent{}, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return ledger.Intent{}, err
		}
		return ledger.Intent{Type: bounty.OpGetBounty, Value: raw, ReadOnly: true}, nil
	}

	return ledger.Intent{}, ErrUnknownCommand
}

func readIntent(opType string) ledger.Intent {
	return ledger.Intent{Type: opType, Value: json.RawMessage("null"), ReadOnly: true}
}

func writeIntent(opType string, v any) (ledger.Intent, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return ledger.Intent{}, err
	}
	return ledger.Intent{Type: opType, Value: raw}, nil
}

func decodeValue(command string, out any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(command)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return fmt.Errorf("%w: trailing data after command", ErrValidation)
	}
	return nil
}

func decodeIDValue(command string) (bounty.ClaimBountyValue, error) {
	var v bounty.ClaimBountyValue
	if err := decodeValue(command, &v); err != nil {
		return v, err
	}
	if err := checkLen("op", v.Op, 1, 128); err != nil {
		return v, err
	}
	if err := checkLen("bountyId", v.BountyID, 1, 128); err != nil {
		return v, err
	}
	return v, nil
}

func checkLen(field, s string, min, max int) error {
	if len(s) < min || len(s) > max {
		return fmt.Errorf("%w: %s must be %d..%d characters", ErrValidation, field, min, max)
	}
	return nil
}
