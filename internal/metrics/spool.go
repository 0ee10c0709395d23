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
	// SpoolStored tracks messages written to the offline spool
	SpoolStored = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spool",
			Name:      "stored_total",
			Help:      "Total number of messages written to the offline spool",
		},
	)

	// SpoolDelivered tracks messages drained from the spool and handed back
	// to the dispatcher on recipient activation
	SpoolDelivered = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spool",
			Name:      "delivered_total",
			Help:      "Total number of spooled messages redelivered",
		},
	)

	// SpoolDropped tracks messages discarded because a recipient's spool
	// was at capacity
	SpoolDropped = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spool",
			Name:      "dropped_total",
			Help:      "Total number of messages dropped due to a full spool",
		},
	)

	// SpoolDepth tracks the current total number of spooled messages across
	// all recipients
	SpoolDepth = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "spool",
			Name:      "depth",
			Help:      "Current total number of messages held in the offline spool",
		},
	)
)
