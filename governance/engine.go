// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/daoledger/database"
	"github.com/blinklabs-io/daoledger/database/models"
	dbtypes "github.com/blinklabs-io/daoledger/database/types"
	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const DefaultVotingWindow = 5 * time.Minute

type EngineConfig struct {
	Database     *database.Database
	Oracle       OwnershipOracle
	Marketplace  Marketplace
	EventBus     *event.EventBus
	Clock        clock.Clock
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Owner        types.Account
	VotingWindow time.Duration
}

// Engine runs the proposal lifecycle and owns the treasury. A single mutex
// orders every operation, including its calls to the oracle and marketplace,
// and each operation commits in one database transaction
type Engine struct {
	config  EngineConfig
	db      *database.Database
	tracer  trace.Tracer
	metrics engineMetrics
	mu      sync.Mutex
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Database == nil {
		return nil, errors.New("governance: database is required")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("governance: ownership oracle is required")
	}
	if cfg.Marketplace == nil {
		return nil, errors.New("governance: marketplace is required")
	}
	if cfg.Owner.IsZero() {
		return nil, errors.New("governance: owner account is required")
	}
	if cfg.VotingWindow <= 0 {
		cfg.VotingWindow = DefaultVotingWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "governance")
	e := &Engine{
		config: cfg,
		db:     cfg.Database,
		tracer: otel.Tracer("github.com/blinklabs-io/daoledger/governance"),
	}
	e.metrics.init(cfg.PromRegistry)
	balance, err := e.db.GetTreasuryBalance(nil)
	if err != nil {
		return nil, fmt.Errorf("load treasury balance: %w", err)
	}
	e.metrics.setBalance(types.Amount(balance))
	return e, nil
}

// Now returns the current time according to the engine clock
func (e *Engine) Now() time.Time {
	return e.config.Clock.Now()
}

// Owner returns the treasury owner account
func (e *Engine) Owner() types.Account {
	return e.config.Owner
}

func (e *Engine) startSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return e.tracer.Start(
		ctx,
		"governance."+name,
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (e *Engine) publish(evtType event.EventType, data any) {
	if e.config.EventBus == nil {
		return
	}
	e.config.EventBus.Publish(evtType, event.NewEvent(evtType, data))
}

// requireHolder checks that the caller currently holds at least one asset unit
func (e *Engine) requireHolder(ctx context.Context, caller types.Account) error {
	balance, err := e.config.Oracle.BalanceOf(ctx, caller)
	if err != nil {
		return fmt.Errorf("query balance: %w", err)
	}
	if balance == 0 {
		return fmt.Errorf("%w: %s holds no asset units", ErrNotAuthorized, caller)
	}
	return nil
}

func (e *Engine) loadProposal(index uint64, txn *database.Txn) (*models.Proposal, error) {
	proposal, err := e.db.GetProposal(index, txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, index)
		}
		return nil, err
	}
	return proposal, nil
}

// CreateProposal appends a proposal to purchase item and returns its index
func (e *Engine) CreateProposal(
	ctx context.Context,
	caller types.Account,
	item types.ItemId,
) (index uint64, err error) {
	ctx, span := e.startSpan(
		ctx,
		"CreateProposal",
		attribute.String("caller", caller.String()),
		attribute.Int64("item", int64(item)), //nolint:gosec
	)
	defer func() { endSpan(span, err) }()
	e.mu.Lock()
	var evt ProposalCreatedEvent
	err = e.createProposal(ctx, caller, item, &evt)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	e.metrics.proposalsCreated.Inc()
	e.config.Logger.Info(
		"proposal created",
		"index", evt.Index,
		"item", item,
		"proposer", caller.String(),
		"deadline", evt.Deadline,
	)
	e.publish(ProposalCreatedEventType, evt)
	return evt.Index, nil
}

func (e *Engine) createProposal(
	ctx context.Context,
	caller types.Account,
	item types.ItemId,
	evt *ProposalCreatedEvent,
) error {
	if err := e.requireHolder(ctx, caller); err != nil {
		return err
	}
	available, err := e.config.Marketplace.IsAvailable(ctx, item)
	if err != nil {
		return fmt.Errorf("query item availability: %w", err)
	}
	if !available {
		return fmt.Errorf("%w: item %d", ErrItemUnavailable, item)
	}
	now := e.config.Clock.Now()
	deadline := now.Add(e.config.VotingWindow)
	txn := e.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		count, err := e.db.GetProposalCount(txn)
		if err != nil {
			return err
		}
		proposal := &models.Proposal{
			ProposalIndex: count,
			TargetItem:    uint64(item),
			Proposer:      caller.Bytes(),
			CreatedTime:   now.UnixNano(),
			Deadline:      deadline.UnixNano(),
		}
		if err := e.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		*evt = ProposalCreatedEvent{
			Index:      count,
			TargetItem: item,
			Proposer:   caller,
			Deadline:   deadline,
		}
		return nil
	})
}

// VoteOnProposal spends every unit the caller holds that has not yet voted on
// the proposal and returns the weight added to the chosen tally
func (e *Engine) VoteOnProposal(
	ctx context.Context,
	caller types.Account,
	index uint64,
	choice Choice,
) (weight uint64, err error) {
	ctx, span := e.startSpan(
		ctx,
		"VoteOnProposal",
		attribute.String("caller", caller.String()),
		attribute.Int64("proposal", int64(index)), //nolint:gosec
		attribute.String("choice", choice.String()),
	)
	defer func() { endSpan(span, err) }()
	if !choice.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChoice, uint8(choice))
	}
	e.mu.Lock()
	var units []types.UnitId
	units, err = e.voteOnProposal(ctx, caller, index, choice)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	weight = uint64(len(units))
	e.metrics.votesCast.Add(float64(weight))
	e.config.Logger.Info(
		"vote cast",
		"index", index,
		"voter", caller.String(),
		"choice", choice.String(),
		"weight", weight,
	)
	e.publish(
		VoteCastEventType,
		VoteCastEvent{
			Index:  index,
			Voter:  caller,
			Choice: choice,
			Weight: weight,
			Units:  units,
		},
	)
	return weight, nil
}

func (e *Engine) voteOnProposal(
	ctx context.Context,
	caller types.Account,
	index uint64,
	choice Choice,
) ([]types.UnitId, error) {
	if err := e.requireHolder(ctx, caller); err != nil {
		return nil, err
	}
	var spent []types.UnitId
	txn := e.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		proposal, err := e.loadProposal(index, txn)
		if err != nil {
			return err
		}
		now := e.config.Clock.Now()
		if now.UnixNano() >= proposal.Deadline {
			return fmt.Errorf("%w: proposal %d", ErrVotingWindowClosed, index)
		}
		units, err := e.config.Oracle.UnitsOwnedBy(ctx, caller)
		if err != nil {
			return fmt.Errorf("query owned units: %w", err)
		}
		if len(units) == 0 {
			return fmt.Errorf("%w: %s holds no asset units", ErrNotAuthorized, caller)
		}
		for _, unit := range units {
			_, voted, err := e.db.GetVote(index, uint64(unit), txn)
			if err != nil {
				return err
			}
			if voted {
				continue
			}
			if err := e.db.SetVote(index, uint64(unit), uint8(choice), txn); err != nil {
				return err
			}
			spent = append(spent, unit)
		}
		if len(spent) == 0 {
			return fmt.Errorf(
				"%w: all %d units of %s already voted on proposal %d",
				ErrNoEligibleVotingRights,
				len(units),
				caller,
				index,
			)
		}
		weight := dbtypes.Uint64(len(spent))
		switch choice {
		case ChoiceYay:
			proposal.YayVotes += weight
		case ChoiceNay:
			proposal.NayVotes += weight
		}
		return e.db.SetProposal(proposal, txn)
	})
	if err != nil {
		return nil, err
	}
	return spent, nil
}

// ExecuteProposal settles a proposal after its deadline. A passing proposal
// buys its target item with treasury funds; a failed purchase leaves the
// proposal unexecuted
func (e *Engine) ExecuteProposal(
	ctx context.Context,
	caller types.Account,
	index uint64,
) (ret Proposal, err error) {
	ctx, span := e.startSpan(
		ctx,
		"ExecuteProposal",
		attribute.String("caller", caller.String()),
		attribute.Int64("proposal", int64(index)), //nolint:gosec
	)
	defer func() { endSpan(span, err) }()
	e.mu.Lock()
	var balance types.Amount
	ret, balance, err = e.executeProposal(ctx, caller, index)
	e.mu.Unlock()
	if err != nil {
		return Proposal{}, err
	}
	span.SetAttributes(attribute.String("outcome", ret.Outcome.String()))
	e.metrics.executions.WithLabelValues(ret.Outcome.String()).Inc()
	if ret.Outcome == OutcomePurchased {
		e.metrics.treasuryOps.WithLabelValues(models.TreasuryEntryPurchase).Inc()
		e.metrics.setBalance(balance)
	}
	e.config.Logger.Info(
		"proposal executed",
		"index", index,
		"executor", caller.String(),
		"outcome", ret.Outcome.String(),
		"yay", ret.YayVotes,
		"nay", ret.NayVotes,
		"price_paid", ret.PricePaid.String(),
	)
	e.publish(
		ProposalExecutedEventType,
		ProposalExecutedEvent{
			Index:     index,
			Executor:  caller,
			Outcome:   ret.Outcome,
			PricePaid: ret.PricePaid,
		},
	)
	return ret, nil
}

func (e *Engine) executeProposal(
	ctx context.Context,
	caller types.Account,
	index uint64,
) (Proposal, types.Amount, error) {
	if err := e.requireHolder(ctx, caller); err != nil {
		return Proposal{}, 0, err
	}
	var ret Proposal
	var newBalance types.Amount
	var purchasedItem *types.ItemId
	var purchasePrice types.Amount
	txn := e.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		proposal, err := e.loadProposal(index, txn)
		if err != nil {
			return err
		}
		now := e.config.Clock.Now()
		if now.UnixNano() < proposal.Deadline {
			return fmt.Errorf("%w: proposal %d", ErrVotingWindowOpen, index)
		}
		if proposal.Executed {
			return fmt.Errorf("%w: proposal %d", ErrAlreadyExecuted, index)
		}
		executedTime := now.UnixNano()
		proposal.Executed = true
		proposal.ExecutedTime = &executedTime
		proposal.Outcome = models.ProposalOutcomeRejected
		if proposal.YayVotes <= proposal.NayVotes {
			if err := e.db.SetProposal(proposal, txn); err != nil {
				return err
			}
			ret = proposalFromModel(proposal)
			return nil
		}
		// Gather every fact the purchase depends on before mutating anything
		item := types.ItemId(proposal.TargetItem)
		price, err := e.config.Marketplace.PriceOf(ctx, item)
		if err != nil {
			return fmt.Errorf("query item price: %w", err)
		}
		available, err := e.config.Marketplace.IsAvailable(ctx, item)
		if err != nil {
			return fmt.Errorf("query item availability: %w", err)
		}
		if !available {
			return fmt.Errorf("%w: item %d", ErrItemUnavailable, item)
		}
		tmpBalance, err := e.db.GetTreasuryBalance(txn)
		if err != nil {
			return err
		}
		balance := types.Amount(tmpBalance)
		remaining, ok := balance.Sub(price)
		if !ok {
			return &types.InsufficientFundsError{
				Available: balance,
				Required:  price,
			}
		}
		// Local effects first, then the purchase as the last step. A failed
		// purchase rolls the transaction back
		pricePaid := dbtypes.Uint64(price)
		proposal.Outcome = models.ProposalOutcomePurchased
		proposal.PricePaid = &pricePaid
		if err := e.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		if err := e.db.SetTreasuryBalance(uint64(remaining), txn); err != nil {
			return err
		}
		proposalIndex := proposal.ProposalIndex
		if err := e.db.AddTreasuryEntry(
			&models.TreasuryEntry{
				Kind:          models.TreasuryEntryPurchase,
				Account:       caller.Bytes(),
				Amount:        dbtypes.Uint64(price),
				Balance:       dbtypes.Uint64(remaining),
				ProposalIndex: &proposalIndex,
				Timestamp:     executedTime,
			},
			txn,
		); err != nil {
			return err
		}
		if err := e.config.Marketplace.Purchase(ctx, item, price); err != nil {
			return fmt.Errorf("purchase item %d: %w", item, err)
		}
		purchasedItem = &item
		purchasePrice = price
		ret = proposalFromModel(proposal)
		newBalance = remaining
		return nil
	})
	if err != nil {
		// The marketplace has no refund, so the sale stands without a matching
		// treasury debit until an operator reconciles it
		if purchasedItem != nil {
			e.config.Logger.Error(
				"item purchased but proposal execution was not committed",
				"index", index,
				"item", uint64(*purchasedItem),
				"price", purchasePrice.String(),
				"executor", caller.String(),
				"error", err,
			)
		}
		return Proposal{}, 0, err
	}
	return ret, newBalance, nil
}

// ProposalCount returns the number of proposals ever created
func (e *Engine) ProposalCount(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.GetProposalCount(nil)
}

// GetProposal returns the proposal with the given index
func (e *Engine) GetProposal(ctx context.Context, index uint64) (Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	proposal, err := e.loadProposal(index, nil)
	if err != nil {
		return Proposal{}, err
	}
	return proposalFromModel(proposal), nil
}

// ListProposals returns up to limit proposals starting at index start, along
// with the total proposal count observed in the same read
func (e *Engine) ListProposals(
	ctx context.Context,
	start uint64,
	limit int,
) ([]Proposal, uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ret []Proposal
	var count uint64
	txn := e.db.Transaction(false)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		count, err = e.db.GetProposalCount(txn)
		if err != nil {
			return err
		}
		tmpProposals, err := e.db.GetProposals(start, limit, txn)
		if err != nil {
			return err
		}
		ret = make([]Proposal, 0, len(tmpProposals))
		for i := range tmpProposals {
			ret = append(ret, proposalFromModel(&tmpProposals[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return ret, count, nil
}

// GetVotes returns the vote recorded for each unit on a proposal
func (e *Engine) GetVotes(ctx context.Context, index uint64) ([]Vote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ret []Vote
	txn := e.db.Transaction(false)
	err := txn.Do(func(txn *database.Txn) error {
		if _, err := e.loadProposal(index, txn); err != nil {
			return err
		}
		records, err := e.db.GetVotes(index, txn)
		if err != nil {
			return err
		}
		ret = make([]Vote, 0, len(records))
		for _, record := range records {
			ret = append(
				ret,
				Vote{
					Unit:   types.UnitId(record.UnitId),
					Choice: Choice(record.Choice),
				},
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
