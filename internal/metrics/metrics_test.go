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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	if HandshakesInitiated == nil {
		t.Fatal("HandshakesInitiated not registered")
	}
	if SessionsActive == nil {
		t.Fatal("SessionsActive not registered")
	}
	if RoutesTaken == nil {
		t.Fatal("RoutesTaken not registered")
	}
	if SpoolDepth == nil {
		t.Fatal("SpoolDepth not registered")
	}
	if NeighborsConnected == nil {
		t.Fatal("NeighborsConnected not registered")
	}
	if PushAttempts == nil {
		t.Fatal("PushAttempts not registered")
	}
}

func TestMetricsNamespacing(t *testing.T) {
	RoutesTaken.WithLabelValues("local").Inc()
	if err := testutil.GatherAndCompare(Registry, strings.NewReader(""), "nonexistent_metric"); err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}
	count := testutil.ToFloat64(RoutesTaken.WithLabelValues("local"))
	if count < 1 {
		t.Fatalf("expected counter to have been incremented, got %v", count)
	}
}

func TestSpoolGaugeRoundTrip(t *testing.T) {
	SpoolDepth.Set(0)
	SpoolDepth.Add(3)
	if got := testutil.ToFloat64(SpoolDepth); got != 3 {
		t.Fatalf("expected spool depth 3, got %v", got)
	}
	SpoolDepth.Set(0)
}
