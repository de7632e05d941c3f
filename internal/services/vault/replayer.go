// Package vault reconstructs user vault state by replaying the contract's
// transaction history from the external ledger indexer.
package vault

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
)

// ErrIndexerUnavailable is the caller-visible transport failure of the raw
// event listing. ReconstructVault swallows the same failure into the
// zero-state default instead.
var ErrIndexerUnavailable = errors.New("ledger indexer unavailable")

type indexer interface {
	AddressTransactions(ctx context.Context, address string) (*clients.AddressTransactions, error)
	PageSize() int
}

// Replayer folds a user's vault transactions into current state.
type Replayer struct {
	indexer    indexer
	contractID string
	logger     *zap.Logger
}

// NewReplayer wires the replayer to the indexer and the vault contract id
// it filters on.
func NewReplayer(indexer indexer, contractID string, logger *zap.Logger) *Replayer {
	return &Replayer{
		indexer:    indexer,
		contractID: contractID,
		logger:     logger,
	}
}

// ListUserEvents returns the user's vault events in ascending block-time
// order. Pending and failed events are included for display; only
// successful ones mutate state on replay. An unreachable indexer surfaces
// as ErrIndexerUnavailable.
func (r *Replayer) ListUserEvents(ctx context.Context, address string) ([]domain.VaultEvent, error) {
	events, _, err := r.fetchEvents(ctx, address)
	return events, err
}

// ReconstructVault replays the user's event history into a VaultState.
// Initial state: zero balances, conservative profile. Transport or parse
// failure degrades to the safe all-zero default rather than failing the
// caller; partial state is never returned.
func (r *Replayer) ReconstructVault(ctx context.Context, address string) domain.VaultState {
	events, truncated, err := r.fetchEvents(ctx, address)
	if err != nil {
		r.logger.Warn("vault reconstruction degraded to empty state",
			zap.String("address", address), zap.Error(err))
		return domain.EmptyVaultState(address)
	}

	state := domain.EmptyVaultState(address)
	state.TruncatedHistory = truncated

	for _, event := range events {
		state.Apply(event)
	}

	if state.Balance < 0 {
		// Permitted by the fold: a withdrawal whose deposit fell outside
		// the history window. Surfaced raw, never clamped.
		r.logger.Warn("replay produced negative balance",
			zap.String("address", address),
			zap.Int64("balance", state.Balance),
			zap.Bool("truncated_history", truncated))
	}

	r.logger.Debug("vault reconstructed",
		zap.String("address", address),
		zap.Int64("balance", state.Balance),
		zap.Int("events", len(events)))

	return state
}

// fetchEvents pulls one indexer page, filters it to the vault contract and
// returns events oldest first. The boolean reports a full page, i.e. the
// history may be truncated.
func (r *Replayer) fetchEvents(ctx context.Context, address string) ([]domain.VaultEvent, bool, error) {
	page, err := r.indexer.AddressTransactions(ctx, address)
	if err != nil {
		return nil, false, errors.Wrap(ErrIndexerUnavailable, err.Error())
	}

	events := make([]domain.VaultEvent, 0, len(page.Results))
	for _, tx := range page.Results {
		if tx.TxType != "contract_call" || tx.ContractCall == nil {
			continue
		}
		if tx.ContractCall.ContractID != r.contractID {
			continue
		}
		events = append(events, r.decodeEvent(tx))
	}

	// The indexer feed is reverse-chronological; replay requires ascending
	// block-time order.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockTime.Equal(events[j].BlockTime) {
			return events[i].BlockHeight < events[j].BlockHeight
		}
		return events[i].BlockTime.Before(events[j].BlockTime)
	})

	truncated := len(page.Results) >= r.indexer.PageSize()

	return events, truncated, nil
}

func (r *Replayer) decodeEvent(tx clients.Transaction) domain.VaultEvent {
	event := domain.VaultEvent{
		TxID:        tx.TxID,
		Function:    domain.VaultFunction(tx.ContractCall.FunctionName),
		Status:      eventStatus(tx.TxStatus),
		BlockTime:   time.Unix(tx.BurnBlockTime, 0).UTC(),
		BlockHeight: tx.BlockHeight,
	}

	args := tx.ContractCall.FunctionArgs

	switch event.Function {
	case domain.FnDeposit:
		if len(args) > 0 {
			event.Amount = r.decodeAmount(tx.TxID, args[0].Repr)
		}
		if len(args) > 1 {
			event.Profile = r.decodeProfile(tx.TxID, args[1].Repr)
		}
	case domain.FnWithdraw:
		if len(args) > 0 {
			event.Amount = r.decodeAmount(tx.TxID, args[0].Repr)
		}
	case domain.FnSetRiskProfile:
		if len(args) > 0 {
			event.Profile = r.decodeProfile(tx.TxID, args[0].Repr)
		}
	}

	return event
}

// decodeAmount parses a Clarity uint repr such as `u100000`. A malformed
// argument contributes zero rather than failing the replay.
func (r *Replayer) decodeAmount(txID, repr string) int64 {
	amount, err := strconv.ParseInt(strings.TrimPrefix(repr, "u"), 10, 64)
	if err != nil {
		r.logger.Warn("skipping unparseable amount argument",
			zap.String("tx_id", txID), zap.String("repr", repr))
		return 0
	}
	return amount
}

// decodeProfile parses a Clarity string repr such as `"aggressive"`.
// Unknown or malformed values are dropped so the replayed profile keeps
// its previous value.
func (r *Replayer) decodeProfile(txID, repr string) domain.RiskProfile {
	profile, ok := domain.ParseRiskProfile(strings.Trim(repr, `"`))
	if !ok {
		r.logger.Warn("skipping unparseable risk profile argument",
			zap.String("tx_id", txID), zap.String("repr", repr))
		return ""
	}
	return profile
}

func eventStatus(txStatus string) domain.EventStatus {
	switch txStatus {
	case "success":
		return domain.StatusSuccess
	case "pending":
		return domain.StatusPending
	default:
		return domain.StatusFailed
	}
}
