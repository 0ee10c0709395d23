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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToEmptyDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 9394, cfg.Station.Port)
}

func TestLoadPrefersEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("station:\n  port: 7000\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("station:\n  port: 8000\n"), 0644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Station.Port)
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	os.Setenv("STATION_HOST", "192.168.1.1")
	os.Setenv("STATION_LOG_LEVEL", "debug")
	defer os.Unsetenv("STATION_HOST")
	defer os.Unsetenv("STATION_LOG_LEVEL")

	dir := t.TempDir()
	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Station.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidStorageDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("storage:\n  driver: mongodb\n"), 0644))

	_, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	assert.Error(t, err)
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("storage:\n  driver: bogus\n"), 0644))

	assert.Panics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: dir, Environment: "test"})
	})
}
