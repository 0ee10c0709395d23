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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("STATION_TEST_VAR", "hello")
	defer os.Unsetenv("STATION_TEST_VAR")

	assert.Equal(t, "hello", SubstituteEnvVars("${STATION_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${STATION_TEST_MISSING:fallback}"))
	assert.Equal(t, "plain", SubstituteEnvVars("plain"))
}

func TestSubstituteEnvVarsInConfig(t *testing.T) {
	os.Setenv("STATION_TEST_HOST", "10.1.1.1")
	defer os.Unsetenv("STATION_TEST_HOST")

	cfg := &Config{Station: StationConfig{Host: "${STATION_TEST_HOST}"}}
	SubstituteEnvVarsInConfig(cfg)

	assert.Equal(t, "10.1.1.1", cfg.Station.Host)
}

func TestGetEnvironment(t *testing.T) {
	os.Unsetenv("STATION_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())

	os.Setenv("STATION_ENV", "Production")
	defer os.Unsetenv("STATION_ENV")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())
}
