package bounty

import "encoding/json"

// Bounty statuses. A bounty only ever moves along
// open -> claimed -> submitted -> completed, with submitted -> claimed on
// rejection (rework) and open -> cancelled as the second terminal edge.
const (
	StatusOpen      = "open"
	StatusClaimed   = "claimed"
	StatusSubmitted = "submitted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected" // transient: never persisted, rejection reverts to claimed
	StatusCancelled = "cancelled"
)

// Bounty is the escrow unit tracked by the state machine. Every field is
// serialized explicitly (no omitempty) so that all replicas store
// byte-identical records; absent values are literal JSON nulls.
//
// Timestamps carry the time oracle's value verbatim at the moment of the
// transition. The oracle feed is not guaranteed monotonic and the value
// is stored untouched.
type Bounty struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Reward          string          `json:"reward"` // decimal string, arbitrary precision
	Poster          string          `json:"poster"`
	Status          string          `json:"status"`
	Claimer         *string         `json:"claimer"`
	Proof           *string         `json:"proof"`
	RejectionReason *string         `json:"rejectionReason"`
	CreatedAt       json.RawMessage `json:"createdAt"`
	ClaimedAt       json.RawMessage `json:"claimedAt"`
	SubmittedAt     json.RawMessage `json:"submittedAt"`
	CompletedAt     json.RawMessage `json:"completedAt"`
}

// Stats tallies bounty counts per status plus a total.
type Stats struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Claimed   int `json:"claimed"`
	Submitted int `json:"submitted"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Operation payload values. The command router validates these strictly at
// construction time (one struct per operation, unknown fields rejected), so
// the engine can rely on them being well-formed once admitted.

// PostBountyValue is the payload for postBounty.
type PostBountyValue struct {
	Op          string `json:"op"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      string `json:"reward"`
}

// ClaimBountyValue is the payload for claimBounty and getBounty.
type ClaimBountyValue struct {
	Op       string `json:"op"`
	BountyID string `json:"bountyId"`
}

// SubmitWorkValue is the payload for submitWork.
type SubmitWorkValue struct {
	Op       string `json:"op"`
	BountyID string `json:"bountyId"`
	Proof    string `json:"proof"`
}

// RejectBountyValue is the payload for rejectBounty.
type RejectBountyValue struct {
	Op       string `json:"op"`
	BountyID string `json:"bountyId"`
	Reason   string `json:"reason"`
}

// Operation type names as they appear on the replicated log.
const (
	OpPostBounty          = "postBounty"
	OpClaimBounty         = "claimBounty"
	OpSubmitWork          = "submitWork"
	OpApproveBounty       = "approveBounty"
	OpRejectBounty        = "rejectBounty"
	OpCancelBounty        = "cancelBounty"
	OpGetBounty           = "getBounty"
	OpListBounties        = "listBounties"
	OpGetMyBounties       = "getMyBounties"
	OpGetMyClaimedBounties = "getMyClaimedBounties"
	OpGetBountyStats      = "getBountyStats"
)

// ReadOnly reports whether an operation type never mutates state. Read
// operations are forced into simulation mode by the transaction pipeline.
func ReadOnly(opType string) bool {
	switch opType {
	case OpGetBounty, OpListBounties, OpGetMyBounties, OpGetMyClaimedBounties, OpGetBountyStats:
		return true
	}
	return false
}
