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

package spool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/core/message"
)

func envelope(sig string) *message.Reliable {
	r := &message.Reliable{}
	r.Sender = "alice@a"
	r.Receiver = "bob@b"
	r.Time = time.Unix(1000, 0)
	r.Signature = []byte(sig)
	return r
}

func forEachImpl(t *testing.T, run func(t *testing.T, s Spool)) {
	t.Run("memory", func(t *testing.T) { run(t, NewMemoryStore()) })
	t.Run("file", func(t *testing.T) { run(t, NewFileStore(t.TempDir())) })
}

func TestSpoolMonotonicity(t *testing.T) {
	forEachImpl(t, func(t *testing.T, s Spool) {
		ctx := context.Background()
		e1, e2 := envelope("sig1"), envelope("sig2")

		require.NoError(t, s.Append(ctx, "bob@b", e1))
		batch, err := s.LoadBatch(ctx, "bob@b", 0)
		require.NoError(t, err)
		require.Len(t, batch.Envelopes, 1)
		assert.Equal(t, e1.PrimaryKey(), batch.Envelopes[0].PrimaryKey())

		require.NoError(t, s.Append(ctx, "bob@b", e2))
		batch, err = s.LoadBatch(ctx, "bob@b", 0)
		require.NoError(t, err)
		require.Len(t, batch.Envelopes, 2)

		require.NoError(t, s.RemoveBatch(ctx, batch, 1))
		batch, err = s.LoadBatch(ctx, "bob@b", 0)
		require.NoError(t, err)
		require.Len(t, batch.Envelopes, 1)
		assert.Equal(t, e2.PrimaryKey(), batch.Envelopes[0].PrimaryKey())
	})
}

func TestSpoolAppendIsIdempotentOnRepeatedSignature(t *testing.T) {
	forEachImpl(t, func(t *testing.T, s Spool) {
		ctx := context.Background()
		e := envelope("same-sig")

		require.NoError(t, s.Append(ctx, "bob@b", e))
		require.NoError(t, s.Append(ctx, "bob@b", envelope("same-sig")))

		batch, err := s.LoadBatch(ctx, "bob@b", 0)
		require.NoError(t, err)
		assert.Len(t, batch.Envelopes, 1)
	})
}

func TestSpoolLoadBatchRespectsLimit(t *testing.T) {
	forEachImpl(t, func(t *testing.T, s Spool) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Append(ctx, "bob@b", envelope(string(rune('a'+i)))))
		}

		batch, err := s.LoadBatch(ctx, "bob@b", 2)
		require.NoError(t, err)
		assert.Len(t, batch.Envelopes, 2)
	})
}

func TestSpoolDepthTracksAcrossRecipients(t *testing.T) {
	forEachImpl(t, func(t *testing.T, s Spool) {
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, "bob@b", envelope("s1")))
		require.NoError(t, s.Append(ctx, "carol@c", envelope("s2")))

		depth, err := s.Depth(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, depth)
	})
}
