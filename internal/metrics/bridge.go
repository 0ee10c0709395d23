// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NeighborsConnected tracks the current count of live octopus bridges
	NeighborsConnected = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "neighbors_connected",
			Help:      "Current number of neighbor stations with an active bridge",
		},
	)

	// BridgeForwarded tracks messages forwarded across the octopus bridge
	BridgeForwarded = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "forwarded_total",
			Help:      "Total number of messages forwarded to or received from neighbors",
		},
		[]string{"direction", "status"}, // inner/outer, success/failure
	)

	// BridgeRoamed tracks messages re-queued to a neighbor's roaming spool
	// after a send failure
	BridgeRoamed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "roamed_total",
			Help:      "Total number of messages queued to the roaming spool after a failed forward",
		},
	)
)
