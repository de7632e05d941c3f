package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVaultStateApply_DepositWithdrawSequence(t *testing.T) {
	state := EmptyVaultState("ST2TEST")

	events := []VaultEvent{
		{TxID: "tx1", Function: FnDeposit, Amount: 100_000, Profile: ProfileConservative, Status: StatusSuccess},
		{TxID: "tx2", Function: FnDeposit, Amount: 2_000_000, Profile: ProfileAggressive, Status: StatusSuccess},
		{TxID: "tx3", Function: FnWithdraw, Amount: 500_000, Status: StatusSuccess},
	}
	for _, e := range events {
		state.Apply(e)
	}

	require.Equal(t, int64(1_600_000), state.Balance)
	require.Equal(t, int64(2_100_000), state.TotalDeposits)
	require.Equal(t, int64(500_000), state.TotalWithdrawals)
	require.Equal(t, ProfileAggressive, state.RiskProfile)
}

func TestVaultStateApply_NonSuccessEventsIgnored(t *testing.T) {
	state := EmptyVaultState("ST2TEST")

	state.Apply(VaultEvent{Function: FnDeposit, Amount: 100_000, Status: StatusFailed})
	state.Apply(VaultEvent{Function: FnDeposit, Amount: 200_000, Status: StatusPending})

	require.Zero(t, state.Balance)
	require.Zero(t, state.TotalDeposits)
	require.Equal(t, ProfileConservative, state.RiskProfile)
}

func TestVaultStateApply_WithdrawWithoutDepositGoesNegative(t *testing.T) {
	state := EmptyVaultState("ST2TEST")

	state.Apply(VaultEvent{Function: FnWithdraw, Amount: 500_000, Status: StatusSuccess})

	require.Equal(t, int64(-500_000), state.Balance)
	require.Equal(t, int64(500_000), state.TotalWithdrawals)
}

func TestVaultStateApply_SetRiskProfile(t *testing.T) {
	state := EmptyVaultState("ST2TEST")

	state.Apply(VaultEvent{Function: FnSetRiskProfile, Profile: ProfileModerate, Status: StatusSuccess})
	require.Equal(t, ProfileModerate, state.RiskProfile)

	// unknown profile keeps the previous value
	state.Apply(VaultEvent{Function: FnSetRiskProfile, Profile: "", Status: StatusSuccess})
	require.Equal(t, ProfileModerate, state.RiskProfile)
}

func TestVaultStateApply_DepositWithoutProfileKeepsCurrent(t *testing.T) {
	state := EmptyVaultState("ST2TEST")
	state.RiskProfile = ProfileAggressive

	state.Apply(VaultEvent{Function: FnDeposit, Amount: 1000, Status: StatusSuccess})

	require.Equal(t, ProfileAggressive, state.RiskProfile)
	require.Equal(t, int64(1000), state.Balance)
}

func TestEmptyVaultState_Defaults(t *testing.T) {
	state := EmptyVaultState("ST2TEST")

	require.Equal(t, "ST2TEST", state.Address)
	require.Zero(t, state.Balance)
	require.Equal(t, ProfileConservative, state.RiskProfile)
	require.False(t, state.TruncatedHistory)
}
