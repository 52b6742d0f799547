package bounty

// Err is a simple string error helper.
type Err string

func (e Err) Error() string { return string(e) }

// Every failure names the violated precondition so callers can branch on
// cause. Messages match the user-visible wording of the platform.
var (
	ErrBountyNotFound    = Err("Bounty not found")
	ErrInvalidAmount     = Err("Invalid reward amount")
	ErrRewardNotPositive = Err("Reward must be greater than 0")
	ErrNotAvailable      = Err("Bounty is not available")
	ErrOwnBounty         = Err("Cannot claim your own bounty")
	ErrNotClaimed        = Err("Bounty is not in claimed status")
	ErrNotClaimer        = Err("Only the claimer can submit work")
	ErrNoSubmission      = Err("No work submitted yet")
	ErrNotPosterApprove  = Err("Only poster can approve")
	ErrNotPosterReject   = Err("Only poster can reject")
	ErrNotPosterCancel   = Err("Only poster can cancel")
	ErrNotCancellable    = Err("Can only cancel unclaimed bounties")
	ErrUnknownOperation  = Err("unknown contract operation")
	ErrBadPayload        = Err("malformed operation payload")
)
