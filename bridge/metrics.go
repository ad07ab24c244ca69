// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"github.com/luxfi/metric"
)

type bridgeMetrics struct {
	opsRequested metric.Counter
	opsExecuted  metric.Counter
	sigsAccepted metric.Counter

	transfersOut metric.Counter
	transfersIn  metric.Counter

	replayRejections   metric.Counter
	cooldownRejections metric.Counter

	custody metric.Gauge
}

func newMetrics(registerer metric.Registerer) (*bridgeMetrics, error) {
	m := &bridgeMetrics{
		opsRequested: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_operations_requested",
			Help: "Number of administrative operations requested",
		}),
		opsExecuted: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_operations_executed",
			Help: "Number of administrative operations that reached quorum and executed",
		}),
		sigsAccepted: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_signatures_accepted",
			Help: "Number of valid operation signatures accepted",
		}),
		transfersOut: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_transfers_out",
			Help: "Number of successful outbound transfers",
		}),
		transfersIn: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_transfers_in",
			Help: "Number of successful inbound settlements",
		}),
		replayRejections: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_replay_rejections",
			Help: "Number of inbound settlements rejected as replays",
		}),
		cooldownRejections: metric.NewCounter(metric.CounterOpts{
			Name: "bridge_cooldown_rejections",
			Help: "Number of inbound settlements rejected by the pacing cooldown",
		}),
		custody: metric.NewGauge(metric.GaugeOpts{
			Name: "bridge_custody_balance",
			Help: "Current custodial balance held by the bridge",
		}),
	}

	for _, c := range []metric.Counter{
		m.opsRequested,
		m.opsExecuted,
		m.sigsAccepted,
		m.transfersOut,
		m.transfersIn,
		m.replayRejections,
		m.cooldownRejections,
	} {
		if err := registerer.Register(metric.AsCollector(c)); err != nil {
			return nil, err
		}
	}
	if err := registerer.Register(metric.AsCollector(m.custody)); err != nil {
		return nil, err
	}
	return m, nil
}
