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
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/daoledger/database"
	"github.com/blinklabs-io/daoledger/database/models"
	dbtypes "github.com/blinklabs-io/daoledger/database/types"
	"github.com/blinklabs-io/daoledger/types"
)

// TreasuryEntry is a journal record of a treasury balance change
type TreasuryEntry struct {
	Timestamp     time.Time
	ProposalIndex *uint64
	Kind          string
	Data          []byte
	Amount        types.Amount
	Balance       types.Amount
	Account       types.Account
}

func treasuryEntryFromModel(m *models.TreasuryEntry) TreasuryEntry {
	ret := TreasuryEntry{
		Timestamp:     time.Unix(0, m.Timestamp).UTC(),
		ProposalIndex: m.ProposalIndex,
		Kind:          m.Kind,
		Data:          m.Data,
		Amount:        types.Amount(m.Amount),
		Balance:       types.Amount(m.Balance),
	}
	if account, err := types.AccountFromBytes(m.Account); err == nil {
		ret.Account = account
	}
	return ret
}

// Deposit credits the treasury. Any account may deposit any amount, including
// zero, and the optional data payload is only recorded in the journal
func (e *Engine) Deposit(
	ctx context.Context,
	caller types.Account,
	amount types.Amount,
	data []byte,
) (balance types.Amount, err error) {
	_, span := e.startSpan(
		ctx,
		"Deposit",
		attribute.String("caller", caller.String()),
		attribute.String("amount", amount.String()),
	)
	defer func() { endSpan(span, err) }()
	e.mu.Lock()
	balance, err = e.deposit(caller, amount, data)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	e.metrics.treasuryOps.WithLabelValues(models.TreasuryEntryDeposit).Inc()
	e.metrics.setBalance(balance)
	e.config.Logger.Debug(
		"treasury deposit",
		"from", caller.String(),
		"amount", amount.String(),
		"balance", balance.String(),
	)
	e.publish(
		TreasuryDepositEventType,
		TreasuryDepositEvent{
			From:    caller,
			Amount:  amount,
			Balance: balance,
			Data:    data,
		},
	)
	return balance, nil
}

func (e *Engine) deposit(
	caller types.Account,
	amount types.Amount,
	data []byte,
) (types.Amount, error) {
	var ret types.Amount
	txn := e.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		tmpBalance, err := e.db.GetTreasuryBalance(txn)
		if err != nil {
			return err
		}
		newBalance, ok := types.Amount(tmpBalance).Add(amount)
		if !ok {
			return ErrBalanceOverflow
		}
		if err := e.db.SetTreasuryBalance(uint64(newBalance), txn); err != nil {
			return err
		}
		if err := e.db.AddTreasuryEntry(
			&models.TreasuryEntry{
				Kind:      models.TreasuryEntryDeposit,
				Account:   caller.Bytes(),
				Amount:    dbtypes.Uint64(amount),
				Balance:   dbtypes.Uint64(newBalance),
				Data:      data,
				Timestamp: e.config.Clock.Now().UnixNano(),
			},
			txn,
		); err != nil {
			return err
		}
		ret = newBalance
		return nil
	})
	return ret, err
}

// Withdraw releases treasury funds to the owner. An amount of zero withdraws
// the whole balance. It returns the amount withdrawn
func (e *Engine) Withdraw(
	ctx context.Context,
	caller types.Account,
	amount types.Amount,
) (withdrawn types.Amount, err error) {
	_, span := e.startSpan(
		ctx,
		"Withdraw",
		attribute.String("caller", caller.String()),
		attribute.String("amount", amount.String()),
	)
	defer func() { endSpan(span, err) }()
	if caller != e.config.Owner {
		return 0, fmt.Errorf("%w: %s is not the treasury owner", ErrNotAuthorized, caller)
	}
	e.mu.Lock()
	var balance types.Amount
	withdrawn, balance, err = e.withdraw(amount)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	e.metrics.treasuryOps.WithLabelValues(models.TreasuryEntryWithdraw).Inc()
	e.metrics.setBalance(balance)
	e.config.Logger.Info(
		"treasury withdrawal",
		"to", caller.String(),
		"amount", withdrawn.String(),
		"balance", balance.String(),
	)
	e.publish(
		TreasuryWithdrawEventType,
		TreasuryWithdrawEvent{
			To:      caller,
			Amount:  withdrawn,
			Balance: balance,
		},
	)
	return withdrawn, nil
}

func (e *Engine) withdraw(amount types.Amount) (types.Amount, types.Amount, error) {
	var withdrawn, remaining types.Amount
	txn := e.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		tmpBalance, err := e.db.GetTreasuryBalance(txn)
		if err != nil {
			return err
		}
		balance := types.Amount(tmpBalance)
		withdrawn = amount
		if withdrawn == 0 {
			withdrawn = balance
		}
		var ok bool
		remaining, ok = balance.Sub(withdrawn)
		if !ok {
			return &types.InsufficientFundsError{
				Available: balance,
				Required:  withdrawn,
			}
		}
		if err := e.db.SetTreasuryBalance(uint64(remaining), txn); err != nil {
			return err
		}
		return e.db.AddTreasuryEntry(
			&models.TreasuryEntry{
				Kind:      models.TreasuryEntryWithdraw,
				Account:   e.config.Owner.Bytes(),
				Amount:    dbtypes.Uint64(withdrawn),
				Balance:   dbtypes.Uint64(remaining),
				Timestamp: e.config.Clock.Now().UnixNano(),
			},
			txn,
		)
	})
	if err != nil {
		return 0, 0, err
	}
	return withdrawn, remaining, nil
}

// TreasuryBalance returns the current treasury balance
func (e *Engine) TreasuryBalance(ctx context.Context) (types.Amount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	balance, err := e.db.GetTreasuryBalance(nil)
	if err != nil {
		return 0, err
	}
	return types.Amount(balance), nil
}

// TreasuryHistory returns up to limit journal records, newest first. A limit
// of zero returns the whole journal
func (e *Engine) TreasuryHistory(
	ctx context.Context,
	limit int,
) ([]TreasuryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tmpEntries, err := e.db.GetTreasuryEntries(limit, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]TreasuryEntry, 0, len(tmpEntries))
	for i := range tmpEntries {
		ret = append(ret, treasuryEntryFromModel(&tmpEntries[i]))
	}
	return ret, nil
}
