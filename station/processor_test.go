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

package station

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/pkg/storage/memory"
)

func TestMetaCheckerReportsMissingMeta(t *testing.T) {
	store := memory.NewStore()
	checker := newMetaChecker(store.MetaStore())

	has, err := checker.HasMeta(context.Background(), "alice@station")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCommandProcessorIsANoOpStub(t *testing.T) {
	p := newCommandProcessor("station@relay")
	reply, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, reply)
}
