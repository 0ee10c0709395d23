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

// Package station is the composition root: it builds every
// collaborator (session table, handshake FSM, dispatcher, spool,
// receptionist, octopus bridge, push sink, policy filter, login
// manager) once, wires them together, and owns the accept loops that
// feed them live connections.
package station

import (
	"context"
	"fmt"
	stdnet "net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dimchat/station/bridge"
	"github.com/dimchat/station/config"
	"github.com/dimchat/station/core/handshake"
	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/dispatcher"
	"github.com/dimchat/station/id"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/login"
	relaynet "github.com/dimchat/station/net"
	"github.com/dimchat/station/pkg/storage"
	"github.com/dimchat/station/pkg/storage/memory"
	"github.com/dimchat/station/pkg/storage/postgres"
	"github.com/dimchat/station/policy"
	"github.com/dimchat/station/push"
	"github.com/dimchat/station/receptionist"
	"github.com/dimchat/station/spool"
)

// Station owns every long-lived collaborator and the two listeners
// (Mars-framed TCP, WebSocket) that feed them.
type Station struct {
	cfg       *config.Config
	stationID string
	log       *logger.StructuredLogger

	store    storage.Store
	spool    *spool.FileStore
	sessions *session.Table
	verifier id.Verifier

	handshakeFSM *handshake.Machine
	dispatcher   *dispatcher.Dispatcher
	receptionist *receptionist.Worker
	bridge       *bridge.Bridge
	pushSink     *push.Sink
	filter       *policy.Filter
	login        *login.Manager

	httpSrv *http.Server
	tcpLn   stdnet.Listener

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New builds a Station from cfg. verifier is the injected crypto
// collaborator (meta/signature verification); this module provides
// only PermissiveVerifier, which accepts everything.
func New(cfg *config.Config, verifier id.Verifier, log *logger.StructuredLogger) (*Station, error) {
	store, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("station: build store: %w", err)
	}

	stationID := fmt.Sprintf("station@%s:%d", cfg.Station.Host, cfg.Station.Port)
	spoolStore := spool.NewFileStore(cfg.Spool.Directory)
	sessions := session.New(nil)
	handshakeFSM := handshake.New(sessions, verifier, log)

	rateLimiter := policy.NewRateLimiter(cfg.Policy.RateLimitPerSecond, cfg.Policy.RateLimitBurst)
	filter := policy.NewFilter(store.PolicyStore(), rateLimiter, cfg.Policy.CacheTTL)

	backend := buildPushBackend(cfg, log)
	pushSink := push.NewSink(backend, 0)

	deliverer := newLocalDeliverer(spoolStore)
	heartbeat := time.Duration(cfg.Station.HeartbeatIntervalS) * time.Second

	var br *bridge.Bridge
	neighbors := make([]bridge.Neighbor, 0, len(cfg.Neighbors))
	for _, n := range cfg.Neighbors {
		neighbors = append(neighbors, bridge.Neighbor{ID: n.ID, Host: n.Host, Port: n.Port})
	}

	st := &Station{
		cfg:          cfg,
		stationID:    stationID,
		log:          log,
		store:        store,
		spool:        spoolStore,
		sessions:     sessions,
		verifier:     verifier,
		handshakeFSM: handshakeFSM,
		filter:       filter,
		pushSink:     pushSink,
		login:        login.New(store.LoginStore()),
	}

	// the bridge needs the dispatcher to feed neighbor traffic back
	// in, and the dispatcher needs the bridge to forward local
	// traffic out — both depend on each other only through the
	// narrow interfaces each package declares, so Dispatch can be
	// passed in once the Dispatcher value exists.
	br = bridge.New(stationID, neighbors, dispatcherAdapter{st}, cfg.BaseDir, heartbeat, log)
	st.bridge = br

	st.dispatcher = dispatcher.New(dispatcher.Config{
		StationID: stationID,
		Sessions:  sessions,
		Deliver:   deliverer,
		Spool:     spoolStore,
		Pusher:    pushSink,
		Bridge:    br,
		Commands:  newCommandProcessor(stationID),
		Receipts:  newReceiptSender(stationID, sessions, deliverer),
		Filter:    filter,
		Meta:      newMetaChecker(store.MetaStore()),
		Log:       log,
	})

	st.receptionist = receptionist.New(spoolStore, sessions, deliverer, receptionist.DefaultTick)

	return st, nil
}

// dispatcherAdapter satisfies bridge.Dispatcher by delegating to the
// Station's own Dispatcher, built after the Bridge so the two can
// reference each other without a field-ordering problem at
// construction time.
type dispatcherAdapter struct{ st *Station }

func (a dispatcherAdapter) Dispatch(ctx context.Context, env *message.Reliable) error {
	return a.st.dispatcher.Dispatch(ctx, env)
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return memory.NewStore(), nil
	case "postgres":
		return postgres.NewStore(context.Background(), &postgres.Config{DSN: cfg.Storage.DSN})
	default:
		return nil, fmt.Errorf("station: unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildPushBackend(cfg *config.Config, log *logger.StructuredLogger) push.Backend {
	switch cfg.Push.Backend {
	case "webhook":
		return push.NewWebhookBackend(cfg.Push.WebhookURL)
	default:
		return push.NewLogBackend(log)
	}
}

// Start launches the background workers and both listeners. It
// returns once they are accepting connections; the workers and
// listeners themselves run until ctx is cancelled or Shutdown is
// called.
func (s *Station) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() { defer s.wg.Done(); s.receptionist.Run(ctx) }()
	s.wg.Add(1)
	go func() { defer s.wg.Done(); s.pushSink.Run(ctx) }()
	s.wg.Add(1)
	go func() { defer s.wg.Done(); s.sweepLoop(ctx) }()
	s.bridge.Start(ctx)

	ln, err := stdnet.Listen("tcp", fmt.Sprintf("%s:%d", s.cfg.Station.Host, s.cfg.Station.Port))
	if err != nil {
		return fmt.Errorf("station: listen tcp: %w", err)
	}
	s.tcpLn = ln
	s.wg.Add(1)
	go func() { defer s.wg.Done(); s.acceptTCP(ctx, ln) }()

	if s.cfg.Station.WebSocketPort != 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/", s.handleWebSocket)
		s.httpSrv = &http.Server{Addr: fmt.Sprintf("%s:%d", s.cfg.Station.Host, s.cfg.Station.WebSocketPort), Handler: mux}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logWarn("websocket listener stopped", err)
			}
		}()
	}

	return nil
}

// Shutdown cancels every background worker and listener, waiting for
// them to finish flushing (bridge workers, in particular, flush
// undelivered envelopes to the roaming spool before returning).
func (s *Station) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.tcpLn != nil {
		_ = s.tcpLn.Close()
	}
	if s.httpSrv != nil {
		_ = s.httpSrv.Shutdown(ctx)
	}
	s.bridge.Stop()
	s.wg.Wait()
	return s.store.Close()
}

// sweepInterval is how often Start's background loop retires
// expired suspend-queue entries and dead sessions. It runs well
// inside dispatcher.DefaultSuspendTTL so a suspended envelope never
// waits much longer than the TTL past its deadline.
const sweepInterval = 30 * time.Second

// sweepLoop periodically drains envelopes that have outlived the
// suspend queue's TTL (SweepSuspended) and evicts sessions whose
// connection has gone quiet for several heartbeat intervals
// (EvictStale). It runs until ctx is cancelled.
func (s *Station) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	staleAfter := 3 * time.Duration(s.cfg.Station.HeartbeatIntervalS) * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatcher.SweepSuspended(ctx)
			s.sessions.EvictStale(func(conn session.Connection) bool {
				idler, ok := conn.(interface{ IdleFor(time.Time) time.Duration })
				if !ok {
					return true
				}
				return idler.IdleFor(time.Now()) < staleAfter
			})
		}
	}
}

func (s *Station) acceptTCP(ctx context.Context, ln stdnet.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				s.logWarn("accept failed", err)
				return
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, relaynet.NewTCPTransporter(conn))
		}()
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Station) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logWarn("websocket upgrade failed", err)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serve(r.Context(), relaynet.NewWSTransporter(conn))
	}()
}

func (s *Station) serve(ctx context.Context, transporter relaynet.Transporter) {
	handler := newConnHandler(s)
	conn := relaynet.NewConnection(transporter)
	docker := relaynet.NewDocker(transporter, handler, time.Duration(s.cfg.Station.HeartbeatIntervalS)*time.Second)
	handler.bind(conn, docker)
	defer handler.forget()
	_ = docker.Run(ctx)
}

func (s *Station) logWarn(msg string, err error) {
	if s.log == nil {
		return
	}
	s.log.Warn("station: "+msg, logger.Field{Key: "error", Value: err.Error()})
}
