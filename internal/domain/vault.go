package domain

import "time"

// VaultFunction is the contract function a ledger event invoked.
type VaultFunction string

const (
	FnDeposit        VaultFunction = "deposit"
	FnWithdraw       VaultFunction = "withdraw"
	FnSetRiskProfile VaultFunction = "set-risk-profile"
)

// EventStatus is the on-chain status of a vault transaction.
type EventStatus string

const (
	StatusSuccess EventStatus = "success"
	StatusPending EventStatus = "pending"
	StatusFailed  EventStatus = "failed"
)

// VaultEvent is one state-mutating call recorded by the external ledger.
// Owned by the ledger; read-only to this system.
type VaultEvent struct {
	TxID        string        `json:"txId"`
	Function    VaultFunction `json:"functionName"`
	Amount      int64         `json:"amount,omitempty"`
	Profile     RiskProfile   `json:"riskProfile,omitempty"`
	Status      EventStatus   `json:"status"`
	BlockTime   time.Time     `json:"timestamp"`
	BlockHeight int64         `json:"blockHeight"`
}

// Applied reports whether the event mutates vault state when replayed.
// Pending and failed events are kept for display but never applied.
func (e VaultEvent) Applied() bool {
	return e.Status == StatusSuccess
}

// VaultState is a user's position, reconstructed on demand by replaying the
// event log. Never stored.
//
// Balance is satoshis and is deliberately not clamped at zero: a withdrawal
// replayed without its matching deposit (truncated history window) drives it
// negative, and callers display the raw figure.
type VaultState struct {
	Address          string      `json:"address"`
	Balance          int64       `json:"balance"`
	TotalDeposits    int64       `json:"totalDeposits"`
	TotalWithdrawals int64       `json:"totalWithdrawals"`
	RiskProfile      RiskProfile `json:"riskProfile"`
	// TruncatedHistory signals that the indexer page was full, so earlier
	// events may be missing and the figures possibly incomplete.
	TruncatedHistory bool `json:"truncatedHistory,omitempty"`
}

// EmptyVaultState is the safe default returned when the ledger indexer is
// unreachable or its payload cannot be decoded.
func EmptyVaultState(address string) VaultState {
	return VaultState{
		Address:     address,
		RiskProfile: ProfileConservative,
	}
}

// Apply folds a single event into the state. Non-success events are ignored.
func (s *VaultState) Apply(e VaultEvent) {
	if !e.Applied() {
		return
	}

	switch e.Function {
	case FnDeposit:
		s.Balance += e.Amount
		s.TotalDeposits += e.Amount
		if e.Profile.Valid() {
			s.RiskProfile = e.Profile
		}
	case FnWithdraw:
		s.Balance -= e.Amount
		s.TotalWithdrawals += e.Amount
	case FnSetRiskProfile:
		if e.Profile.Valid() {
			s.RiskProfile = e.Profile
		}
	}
}
