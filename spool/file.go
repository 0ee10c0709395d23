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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/internal/metrics"
)

// FileStore persists each recipient's queue as a single JSON batch
// file under baseDir/{subdir}/{recipient}/batch-0.msg, written with
// the station's write-temp-then-rename convention for atomicity.
type FileStore struct {
	baseDir string
	subdir  string
	locks   sync.Map // recipient -> *sync.Mutex
}

// NewFileStore builds a FileStore rooted at baseDir/messages. The
// directory is created lazily per recipient on first append.
func NewFileStore(baseDir string) *FileStore {
	return NewFileStoreIn(baseDir, "messages")
}

// NewFileStoreIn builds a FileStore rooted at baseDir/subdir, for
// layouts other than the recipient offline spool — the octopus
// bridge's roaming store keeps the same batch-file shape under
// "roaming" instead of "messages".
func NewFileStoreIn(baseDir, subdir string) *FileStore {
	return &FileStore{baseDir: baseDir, subdir: subdir}
}

func (f *FileStore) lockFor(recipient string) *sync.Mutex {
	actual, _ := f.locks.LoadOrStore(recipient, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func (f *FileStore) dir(recipient string) string {
	return filepath.Join(f.baseDir, f.subdir, recipient)
}

func (f *FileStore) path(recipient string) string {
	return filepath.Join(f.dir(recipient), "batch-0.msg")
}

func (f *FileStore) Append(ctx context.Context, recipient string, env *message.Reliable) error {
	lock := f.lockFor(recipient)
	lock.Lock()
	defer lock.Unlock()

	envs, err := f.readAll(recipient)
	if err != nil {
		return err
	}
	if n := len(envs); n > 0 && envs[n-1].PrimaryKey() == env.PrimaryKey() {
		return nil
	}
	envs = append(envs, env)
	if err := f.writeAll(recipient, envs); err != nil {
		return err
	}
	metrics.SpoolStored.Inc()
	metrics.SpoolDepth.Inc()
	return nil
}

func (f *FileStore) LoadBatch(ctx context.Context, recipient string, limit int) (Batch, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	lock := f.lockFor(recipient)
	lock.Lock()
	defer lock.Unlock()

	envs, err := f.readAll(recipient)
	if err != nil {
		return Batch{}, err
	}
	if len(envs) > limit {
		envs = envs[:limit]
	}
	return Batch{Recipient: recipient, Envelopes: envs}, nil
}

func (f *FileStore) RemoveBatch(ctx context.Context, batch Batch, count int) error {
	lock := f.lockFor(batch.Recipient)
	lock.Lock()
	defer lock.Unlock()

	envs, err := f.readAll(batch.Recipient)
	if err != nil {
		return err
	}
	if count > len(envs) {
		count = len(envs)
	}
	remaining := envs[count:]
	if err := f.writeAll(batch.Recipient, remaining); err != nil {
		return err
	}
	if count > 0 {
		metrics.SpoolDelivered.Add(float64(count))
		metrics.SpoolDepth.Sub(float64(count))
	}
	return nil
}

func (f *FileStore) Depth(ctx context.Context) (int, error) {
	root := filepath.Join(f.baseDir, f.subdir)
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("spool: list recipients: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		envs, err := f.readAll(entry.Name())
		if err != nil {
			return 0, err
		}
		total += len(envs)
	}
	return total, nil
}

func (f *FileStore) readAll(recipient string) ([]*message.Reliable, error) {
	data, err := os.ReadFile(f.path(recipient))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("spool: read %s: %w", recipient, err)
	}
	var envs []*message.Reliable
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("spool: decode %s: %w", recipient, err)
	}
	return envs, nil
}

func (f *FileStore) writeAll(recipient string, envs []*message.Reliable) error {
	dir := f.dir(recipient)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("spool: create directory for %s: %w", recipient, err)
	}

	data, err := json.Marshal(envs)
	if err != nil {
		return fmt.Errorf("spool: encode %s: %w", recipient, err)
	}

	tmp := filepath.Join(dir, ".batch-0.msg.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("spool: write temp file for %s: %w", recipient, err)
	}
	if err := os.Rename(tmp, f.path(recipient)); err != nil {
		return fmt.Errorf("spool: rename temp file for %s: %w", recipient, err)
	}
	return nil
}
