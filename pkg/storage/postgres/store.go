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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dimchat/station/pkg/storage"
)

// Store implements storage.Store backed by PostgreSQL, for production
// deployments that need the meta/profile/login/group-key caches to
// survive a station restart.
type Store struct {
	pool    *pgxpool.Pool
	login   *LoginStore
	meta    *MetaStore
	profile *ProfileStore
	group   *GroupKeyStore
	policy  *PolicyStore
}

// Config holds PostgreSQL connection configuration. A non-empty DSN
// is used as the connection string as is; otherwise one is built from
// the remaining fields.
type Config struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewStore creates a new PostgreSQL-backed store
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	connString := cfg.DSN
	if connString == "" {
		connString = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	store.login = &LoginStore{db: pool}
	store.meta = &MetaStore{db: pool}
	store.profile = &ProfileStore{db: pool}
	store.group = &GroupKeyStore{db: pool}
	store.policy = &PolicyStore{db: pool}

	return store, nil
}

func (s *Store) LoginStore() storage.LoginStore       { return s.login }
func (s *Store) MetaStore() storage.MetaStore         { return s.meta }
func (s *Store) ProfileStore() storage.ProfileStore   { return s.profile }
func (s *Store) GroupKeyStore() storage.GroupKeyStore { return s.group }
func (s *Store) PolicyStore() storage.PolicyStore     { return s.policy }

// Close closes the database connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
