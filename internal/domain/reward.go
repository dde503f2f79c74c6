package domain

// RewardConfirmation is the proof that a reward operation completed
// ConfirmationNumber is opaque to callers and unique per successful reward.
type RewardConfirmation struct {
	ConfirmationNumber string
	Contribution       *AccountContribution
}
