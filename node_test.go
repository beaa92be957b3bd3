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

package daoledger

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/types"
)

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(NewConfig())
	assert.Error(t, err)
}

func TestNodeRunStop(t *testing.T) {
	mockClock := clock.NewMock()
	promRegistry := prometheus.NewRegistry()
	n, err := New(NewConfig(
		WithOwner(testOwner),
		WithDaoAccount(testDao),
		WithClock(mockClock),
		WithPrometheusRegistry(promRegistry),
		WithApiListenAddress("127.0.0.1:0"),
		WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)
	runErr := make(chan error, 1)
	go func() {
		runErr <- n.Run()
	}()
	select {
	case <-n.Ready():
	case err := <-runErr:
		require.NoError(t, err)
		t.Fatal("node exited before becoming ready")
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for node to start")
	}

	// Drive a full proposal through the wired components
	ctx := context.Background()
	alice := types.MustParseAccount("0x0000000000000000000000000000000000000001")
	_, err = n.Registry().StartPresale(testOwner)
	require.NoError(t, err)
	mockClock.Add(5 * time.Minute)
	_, err = n.Registry().Mint(alice, types.Coin)
	require.NoError(t, err)
	engine := n.Engine()
	_, err = engine.Deposit(ctx, alice, types.Coin, nil)
	require.NoError(t, err)
	index, err := engine.CreateProposal(ctx, alice, 1)
	require.NoError(t, err)
	_, err = engine.VoteOnProposal(ctx, alice, index, governance.ChoiceYay)
	require.NoError(t, err)
	mockClock.Add(governance.DefaultVotingWindow)
	proposal, err := engine.ExecuteProposal(ctx, alice, index)
	require.NoError(t, err)
	assert.Equal(t, governance.OutcomePurchased, proposal.Outcome)
	owner, ok := n.market.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, testDao, owner)

	count, err := testutil.GatherAndCount(
		promRegistry,
		"daoledger_governance_proposals_created_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		Timeout:   5 * time.Second,
	}
	resp, err := client.Get("http://" + n.Api().Addr().String() + "/api/v0/proposals/0")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, n.Stop())
	require.NoError(t, <-runErr)
	// Stop is idempotent
	require.NoError(t, n.Stop())
}
