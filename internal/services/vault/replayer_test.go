package vault

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
)

const testContract = "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.sbtc-vault"

type fakeIndexer struct {
	page     *clients.AddressTransactions
	err      error
	pageSize int
	calls    int
}

func (f *fakeIndexer) AddressTransactions(context.Context, string) (*clients.AddressTransactions, error) {
	f.calls++
	return f.page, f.err
}

func (f *fakeIndexer) PageSize() int {
	if f.pageSize == 0 {
		return 50
	}
	return f.pageSize
}

func contractCall(txID, status string, height, burnTime int64, fn string, args ...clients.FunctionArg) clients.Transaction {
	return clients.Transaction{
		TxID:          txID,
		TxType:        "contract_call",
		TxStatus:      status,
		BlockHeight:   height,
		BurnBlockTime: burnTime,
		ContractCall: &clients.ContractCall{
			ContractID:   testContract,
			FunctionName: fn,
			FunctionArgs: args,
		},
	}
}

func uintArg(repr string) clients.FunctionArg {
	return clients.FunctionArg{Name: "amount", Type: "uint", Repr: repr}
}

func stringArg(repr string) clients.FunctionArg {
	return clients.FunctionArg{Name: "profile", Type: "string-ascii", Repr: repr}
}

func TestReconstructVault_DepositWithdrawSequence(t *testing.T) {
	// indexer returns newest first; replay must fold oldest first
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx3", "success", 103, 3000, "withdraw", uintArg("u500000")),
		contractCall("tx2", "success", 102, 2000, "deposit", uintArg("u2000000"), stringArg(`"aggressive"`)),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000"), stringArg(`"conservative"`)),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")

	require.Equal(t, int64(1_600_000), state.Balance)
	require.Equal(t, int64(2_100_000), state.TotalDeposits)
	require.Equal(t, int64(500_000), state.TotalWithdrawals)
	require.Equal(t, domain.ProfileAggressive, state.RiskProfile)
	require.False(t, state.TruncatedHistory)
}

func TestReconstructVault_Idempotent(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000"), stringArg(`"moderate"`)),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	first := replayer.ReconstructVault(context.Background(), "ST2USER")
	second := replayer.ReconstructVault(context.Background(), "ST2USER")

	require.Equal(t, first, second)
}

func TestReconstructVault_FailedEventsNotApplied(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx2", "abort_by_response", 102, 2000, "deposit", uintArg("u900000")),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")

	require.Equal(t, int64(100_000), state.Balance)
	require.Equal(t, int64(100_000), state.TotalDeposits)
}

func TestReconstructVault_ForeignTransactionsFiltered(t *testing.T) {
	foreign := contractCall("tx2", "success", 102, 2000, "deposit", uintArg("u999999"))
	foreign.ContractCall.ContractID = "SP000.some-other-contract"

	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		{TxID: "tx3", TxType: "token_transfer", TxStatus: "success"},
		foreign,
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")
	require.Equal(t, int64(100_000), state.Balance)
}

func TestReconstructVault_DegradesToEmptyStateOnIndexerFailure(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("504 gateway timeout")}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")

	require.Equal(t, domain.EmptyVaultState("ST2USER"), state)
}

func TestReconstructVault_TruncatedHistoryFlag(t *testing.T) {
	results := make([]clients.Transaction, 0, 3)
	results = append(results,
		contractCall("tx3", "success", 103, 3000, "withdraw", uintArg("u500000")),
		contractCall("tx2", "success", 102, 2000, "deposit", uintArg("u100000")),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000")),
	)
	indexer := &fakeIndexer{
		page:     &clients.AddressTransactions{Results: results},
		pageSize: 3,
	}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")
	require.True(t, state.TruncatedHistory)
}

func TestReconstructVault_NegativeBalanceSurfacedRaw(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx1", "success", 101, 1000, "withdraw", uintArg("u500000")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")
	require.Equal(t, int64(-500_000), state.Balance)
}

func TestReconstructVault_MalformedAmountContributesZero(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx2", "success", 102, 2000, "deposit", uintArg("unot-a-number")),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")
	require.Equal(t, int64(100_000), state.Balance)
}

func TestListUserEvents_AscendingOrder(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx3", "success", 103, 3000, "withdraw", uintArg("u1")),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u2")),
		contractCall("tx2", "pending", 102, 2000, "deposit", uintArg("u3")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	events, err := replayer.ListUserEvents(context.Background(), "ST2USER")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "tx1", events[0].TxID)
	require.Equal(t, "tx2", events[1].TxID)
	require.Equal(t, "tx3", events[2].TxID)

	// pending events are listed but marked not applied
	require.Equal(t, domain.StatusPending, events[1].Status)
	require.False(t, events[1].Applied())
}

func TestListUserEvents_IndexerUnavailable(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("connection reset")}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	_, err := replayer.ListUserEvents(context.Background(), "ST2USER")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIndexerUnavailable))
}

func TestReconstructVault_SetRiskProfileEvent(t *testing.T) {
	indexer := &fakeIndexer{page: &clients.AddressTransactions{Results: []clients.Transaction{
		contractCall("tx2", "success", 102, 2000, "set-risk-profile", stringArg(`"moderate"`)),
		contractCall("tx1", "success", 101, 1000, "deposit", uintArg("u100000")),
	}}}
	replayer := NewReplayer(indexer, testContract, zap.NewNop())

	state := replayer.ReconstructVault(context.Background(), "ST2USER")
	require.Equal(t, domain.ProfileModerate, state.RiskProfile)
	require.Equal(t, int64(100_000), state.Balance)
}
