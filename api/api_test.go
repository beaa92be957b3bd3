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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/daoledger/api"
	"github.com/blinklabs-io/daoledger/database"
	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/marketplace"
	"github.com/blinklabs-io/daoledger/registry"
	"github.com/blinklabs-io/daoledger/token"
	"github.com/blinklabs-io/daoledger/types"
	"github.com/blinklabs-io/daoledger/whitelist"
)

const (
	testOwner = "0x00000000000000000000000000000000000000aa"
	testDao   = "0x00000000000000000000000000000000000000da"
	testAlice = "0x0000000000000000000000000000000000000001"
	testBob   = "0x0000000000000000000000000000000000000002"
)

type testEnv struct {
	server *api.Server
	clock  *clock.Mock
	market *marketplace.Market
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	mockClock := clock.NewMock()
	owner := types.MustParseAccount(testOwner)
	wl := whitelist.NewWhitelist(whitelist.WhitelistConfig{})
	reg, err := registry.NewRegistry(registry.RegistryConfig{
		Whitelist: wl,
		Clock:     mockClock,
		Owner:     owner,
	})
	require.NoError(t, err)
	market := marketplace.NewMarket(marketplace.MarketConfig{})
	tok, err := token.NewToken(token.TokenConfig{
		Holdings: reg,
		Owner:    owner,
	})
	require.NoError(t, err)
	engine, err := governance.NewEngine(governance.EngineConfig{
		Database: db,
		Oracle:   reg,
		Marketplace: &marketplace.Adapter{
			Market: market,
			Buyer:  types.MustParseAccount(testDao),
		},
		Clock: mockClock,
		Owner: owner,
	})
	require.NoError(t, err)
	server, err := api.New(api.ServerConfig{
		Engine:        engine,
		Whitelist:     wl,
		Registry:      reg,
		Market:        market,
		Token:         tok,
		ListenAddress: "127.0.0.1:0",
	})
	require.NoError(t, err)
	return &testEnv{server: server, clock: mockClock, market: market}
}

// do sends a request through the router and decodes a successful response
// into out
func (e *testEnv) do(
	t *testing.T,
	method string,
	path string,
	account string,
	body any,
	out any,
) int {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set(api.AccountHeader, account)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(api.RequestIdHeader))
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

// mintUnits runs the presale to completion and mints units for account
func (e *testEnv) mintUnits(t *testing.T, account string, count int) {
	t.Helper()
	var info api.AssetsInfoResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v0/assets", "", nil, &info))
	if info.Minted == 0 {
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/v0/assets/presale", testOwner, nil, nil))
		e.clock.Add(registry.DefaultPresaleDuration)
	}
	for range count {
		require.Equal(
			t,
			http.StatusCreated,
			e.do(t, http.MethodPost, "/api/v0/assets/mint", account, api.MintRequest{Value: "0.01"}, nil),
		)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	var resp api.HealthResponse
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil, &resp))
	assert.True(t, resp.IsHealthy)
}

func TestProposalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.mintUnits(t, testAlice, 2)
	env.mintUnits(t, testBob, 1)

	var created api.CreateProposalResponse
	code := env.do(t, http.MethodPost, "/api/v0/proposals", testAlice, map[string]any{"item": 7}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, uint64(0), created.Index)

	var vote api.VoteResponse
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/votes", testAlice, api.VoteRequest{Choice: "yay"}, &vote)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(2), vote.Weight)
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/votes", testBob, api.VoteRequest{Choice: "nay"}, &vote)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(1), vote.Weight)
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/votes", testBob, api.VoteRequest{Choice: "nay"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var votes []api.VoteRecordResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/proposals/0/votes", "", nil, &votes))
	assert.Len(t, votes, 3)

	// Too early
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/execute", testAlice, nil, nil)
	assert.Equal(t, http.StatusConflict, code)

	env.clock.Add(governance.DefaultVotingWindow)
	// Treasury is empty
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/execute", testAlice, nil, nil)
	assert.Equal(t, http.StatusPaymentRequired, code)

	var balance api.BalanceResponse
	code = env.do(t, http.MethodPost, "/api/v0/treasury/deposit", testBob, api.DepositRequest{Amount: "0.5"}, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, types.MustParseAmount("0.5"), balance.Balance)

	var proposal api.ProposalResponse
	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/execute", testAlice, nil, &proposal)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, proposal.Executed)
	assert.Equal(t, "purchased", proposal.Outcome)
	require.NotNil(t, proposal.PricePaid)
	assert.Equal(t, marketplace.DefaultItemPrice, *proposal.PricePaid)

	owner, ok := env.market.OwnerOf(7)
	require.True(t, ok)
	assert.Equal(t, types.MustParseAccount(testDao), owner)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/treasury", "", nil, &balance))
	assert.Equal(t, types.MustParseAmount("0.4"), balance.Balance)

	var list api.ProposalListResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/proposals", "", nil, &list))
	assert.Equal(t, uint64(1), list.Count)
	require.Len(t, list.Proposals, 1)
	assert.Equal(t, "executed", list.Proposals[0].State)

	code = env.do(t, http.MethodPost, "/api/v0/proposals/0/execute", testAlice, nil, nil)
	assert.Equal(t, http.StatusConflict, code)

	var history []api.TreasuryEntryResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/treasury/history", "", nil, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "purchase", history[0].Kind)
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	env.mintUnits(t, testAlice, 1)
	testDefs := []struct {
		name    string
		method  string
		path    string
		account string
		body    any
		status  int
	}{
		{
			name:   "missing account header",
			method: http.MethodPost,
			path:   "/api/v0/proposals",
			body:   map[string]any{"item": 1},
			status: http.StatusBadRequest,
		},
		{
			name:    "malformed account header",
			method:  http.MethodPost,
			path:    "/api/v0/proposals",
			account: "not-an-account",
			body:    map[string]any{"item": 1},
			status:  http.StatusBadRequest,
		},
		{
			name:    "missing item",
			method:  http.MethodPost,
			path:    "/api/v0/proposals",
			account: testAlice,
			body:    map[string]any{},
			status:  http.StatusBadRequest,
		},
		{
			name:    "non holder creates",
			method:  http.MethodPost,
			path:    "/api/v0/proposals",
			account: testBob,
			body:    map[string]any{"item": 1},
			status:  http.StatusForbidden,
		},
		{
			name:   "unknown proposal",
			method: http.MethodGet,
			path:   "/api/v0/proposals/42",
			status: http.StatusNotFound,
		},
		{
			name:   "bad proposal index",
			method: http.MethodGet,
			path:   "/api/v0/proposals/abc",
			status: http.StatusBadRequest,
		},
		{
			name:    "bad choice",
			method:  http.MethodPost,
			path:    "/api/v0/proposals/0/votes",
			account: testAlice,
			body:    api.VoteRequest{Choice: "maybe"},
			status:  http.StatusBadRequest,
		},
		{
			name:    "bad deposit amount",
			method:  http.MethodPost,
			path:    "/api/v0/treasury/deposit",
			account: testAlice,
			body:    api.DepositRequest{Amount: "-1"},
			status:  http.StatusBadRequest,
		},
		{
			name:    "withdraw by non owner",
			method:  http.MethodPost,
			path:    "/api/v0/treasury/withdraw",
			account: testAlice,
			body:    api.WithdrawRequest{},
			status:  http.StatusForbidden,
		},
		{
			name:    "withdraw beyond balance",
			method:  http.MethodPost,
			path:    "/api/v0/treasury/withdraw",
			account: testOwner,
			body:    api.WithdrawRequest{Amount: "1"},
			status:  http.StatusPaymentRequired,
		},
		{
			name:   "unknown unit",
			method: http.MethodGet,
			path:   "/api/v0/assets/units/99",
			status: http.StatusNotFound,
		},
		{
			name:    "mint underpaid",
			method:  http.MethodPost,
			path:    "/api/v0/assets/mint",
			account: testBob,
			body:    api.MintRequest{Value: "0.001"},
			status:  http.StatusPaymentRequired,
		},
		{
			name:    "claim without units",
			method:  http.MethodPost,
			path:    "/api/v0/token/claim",
			account: testBob,
			status:  http.StatusForbidden,
		},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			code := env.do(t, tc.method, tc.path, tc.account, tc.body, nil)
			assert.Equal(t, tc.status, code)
		})
	}
}

func TestCreateProposalSoldItem(t *testing.T) {
	env := newTestEnv(t)
	env.mintUnits(t, testAlice, 1)
	require.NoError(t, env.market.Purchase(
		context.Background(),
		types.MustParseAccount(testBob),
		3,
		marketplace.DefaultItemPrice,
	))
	code := env.do(t, http.MethodPost, "/api/v0/proposals", testAlice, map[string]any{"item": 3}, nil)
	assert.Equal(t, http.StatusGone, code)

	var item api.MarketItemResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/market/items/3", "", nil, &item))
	assert.False(t, item.Available)
	require.NotNil(t, item.Owner)
	assert.Equal(t, types.MustParseAccount(testBob), *item.Owner)
}

func TestWhitelistAndPresale(t *testing.T) {
	env := newTestEnv(t)
	var wl api.WhitelistResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v0/whitelist", testAlice, nil, &wl))
	assert.Equal(t, 1, wl.Count)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v0/whitelist", testAlice, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/whitelist/"+testBob, "", nil, &wl))
	assert.False(t, wl.Whitelisted)

	// Presale not started
	code := env.do(t, http.MethodPost, "/api/v0/assets/presale/mint", testAlice, api.MintRequest{Value: "0.01"}, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/v0/assets/presale", testAlice, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v0/assets/presale", testOwner, nil, nil))

	var minted api.MintResponse
	code = env.do(t, http.MethodPost, "/api/v0/assets/presale/mint", testAlice, api.MintRequest{Value: "0.01"}, &minted)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, uint64(1), minted.Unit)
	code = env.do(t, http.MethodPost, "/api/v0/assets/presale/mint", testBob, api.MintRequest{Value: "0.01"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = env.do(t, http.MethodPost, "/api/v0/assets/mint", testBob, api.MintRequest{Value: "0.01"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var unit api.UnitResponse
	code = env.do(t, http.MethodPost, "/api/v0/assets/units/1/transfer", testAlice, api.TransferRequest{To: testBob}, &unit)
	require.Equal(t, http.StatusOK, code)
	var balance api.AssetBalanceResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/assets/accounts/"+testBob, "", nil, &balance))
	assert.Equal(t, uint64(1), balance.Balance)
	assert.Equal(t, []uint64{1}, balance.Units)
}

func TestToken(t *testing.T) {
	env := newTestEnv(t)
	env.mintUnits(t, testAlice, 2)

	var claim api.ClaimResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v0/token/claim", testAlice, nil, &claim))
	assert.Equal(t, uint64(20), claim.Claimed)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v0/token/claim", testAlice, nil, nil))

	var balance api.TokenBalanceResponse
	code := env.do(t, http.MethodPost, "/api/v0/token/mint", testBob, api.TokenMintRequest{Amount: 5, Value: "0.005"}, &balance)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, uint64(5), balance.Balance)
	assert.Equal(t, uint64(25), balance.TotalSupply)

	code = env.do(t, http.MethodPost, "/api/v0/token/mint", testBob, api.TokenMintRequest{Amount: 5, Value: "0.004"}, nil)
	assert.Equal(t, http.StatusPaymentRequired, code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v0/token/accounts/"+testAlice, "", nil, &balance))
	assert.Equal(t, uint64(20), balance.Balance)
}

func TestStartStop(t *testing.T) {
	env := newTestEnv(t)
	// The stores keep their own goroutines until cleanup
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.server.Start(ctx))
	assert.Error(t, env.server.Start(ctx))

	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		Timeout:   5 * time.Second,
	}
	resp, err := client.Get("http://" + env.server.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(api.RequestIdHeader))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, env.server.Stop(stopCtx))
	assert.Nil(t, env.server.Addr())
	// Stopping twice is harmless
	require.NoError(t, env.server.Stop(stopCtx))
}
