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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/daoledger/types"
)

type engineMetrics struct {
	proposalsCreated prometheus.Counter
	votesCast        prometheus.Counter
	executions       *prometheus.CounterVec
	treasuryOps      *prometheus.CounterVec
	treasuryBalance  prometheus.Gauge
}

func (m *engineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "daoledger_governance_proposals_created_total",
		Help: "total proposals created",
	})
	m.votesCast = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "daoledger_governance_votes_cast_total",
		Help: "total voting weight cast across all proposals",
	})
	m.executions = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daoledger_governance_executions_total",
			Help: "successful proposal executions by outcome",
		},
		[]string{"outcome"},
	)
	m.treasuryOps = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daoledger_treasury_operations_total",
			Help: "treasury balance changes by kind",
		},
		[]string{"kind"},
	)
	m.treasuryBalance = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "daoledger_treasury_balance",
		Help: "current treasury balance in coins",
	})
}

func (m *engineMetrics) setBalance(balance types.Amount) {
	m.treasuryBalance.Set(float64(balance) / float64(types.Coin))
}
