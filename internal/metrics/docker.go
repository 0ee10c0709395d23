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
	// OutboundQueueDepth tracks how many ships are waiting per connection.
	OutboundQueueDepth = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "docker",
			Name:      "outbound_queue_depth",
			Help:      "Number of ships queued on a connection's outbound queue at enqueue time",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// ShipLatency tracks time from enqueue to write (or drop).
	ShipLatency = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "docker",
			Name:      "ship_latency_seconds",
			Help:      "Time a ship spent queued before being written or dropped",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"outcome"}, // written, dropped_timeout, dropped_transport
	)

	// ConnectionsAccepted counts accepted sockets by transport kind.
	ConnectionsAccepted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "docker",
			Name:      "connections_accepted_total",
			Help:      "Total accepted connections by transport",
		},
		[]string{"transport"}, // tcp, websocket
	)

	// ConnectionsClosed counts closed sockets.
	ConnectionsClosed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "docker",
			Name:      "connections_closed_total",
			Help:      "Total closed connections",
		},
	)
)
