// Package dashboard serves the web UI and the JSON API around the snapshot
// fetcher, store and analytics engine.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/poly-watch/pkg/analytics"
	"github.com/poly-watch/pkg/polymarket"
	"github.com/poly-watch/pkg/session"
	"github.com/poly-watch/pkg/store"
	"github.com/poly-watch/pkg/wallet"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	store  *store.Store
	engine *analytics.Engine
	fetch  session.FetchFunc
	port   int

	httpSrv *http.Server

	mu     sync.Mutex
	latest *polymarket.Snapshot
	subs   map[chan *polymarket.Snapshot]bool
}

func New(st *store.Store, engine *analytics.Engine, fetch session.FetchFunc, port int) *Server {
	return &Server{
		store:  st,
		engine: engine,
		fetch:  fetch,
		port:   port,
		subs:   make(map[chan *polymarket.Snapshot]bool),
	}
}

func (s *Server) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/wallets", cors(s.handleWallets))
	mux.HandleFunc("/api/history", cors(s.handleHistory))
	mux.HandleFunc("/api/alerts", cors(s.handleAlerts))
	mux.HandleFunc("/api/stats", cors(s.handleStats))
	mux.HandleFunc("/api/watchlists", cors(s.handleWatchlists))
	mux.HandleFunc("/data", cors(s.handleData))
	mux.HandleFunc("/refresh", cors(s.handleRefresh))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/", s.serveFrontend)

	s.httpSrv = &http.Server{Addr: fmt.Sprintf(":%d", s.port), Handler: mux}
	log.Info().Str("addr", s.httpSrv.Addr).Msg("🌐 dashboard started")

	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Publish hands a live-session snapshot to connected websocket clients.
func (s *Server) Publish(snap *polymarket.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	for ch := range s.subs {
		select {
		case ch <- snap:
		default: // slow client, drop this update
		}
	}
	s.mu.Unlock()
}

func cors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleWallets validates the submitted addresses, fetches one snapshot and
// persists it. Validation failures name every bad token, not just the first.
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	var req struct {
		Addresses []string `json:"addresses"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	addrs, err := wallet.ValidateAddresses(strings.Join(req.Addresses, ","))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	snap, err := s.fetch(ctx, addrs)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if _, err := s.store.SaveSnapshot(snap); err != nil {
		log.Warn().Err(err).Msg("snapshot not persisted")
	}

	writeJSON(w, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	records, err := s.store.RecentSnapshots(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, records)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	alerts, err := s.store.RecentAlerts(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, alerts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleWatchlists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		lists, err := s.store.GetWatchlists()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, lists)
	case "POST":
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		var req struct {
			Name      string   `json:"name"`
			Addresses []string `json:"addresses"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "name and addresses required")
			return
		}
		addrs, err := wallet.ValidateAddresses(strings.Join(req.Addresses, ","))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := s.store.UpsertWatchlist(req.Name, addrs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{"id": id, "name": req.Name, "status": "ok"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST only")
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	report, updated, ok := s.engine.Current()
	if !ok {
		if err := s.engine.Refresh(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		report, updated, _ = s.engine.Current()
	}
	writeJSON(w, map[string]interface{}{
		"data":         report,
		"last_updated": updated,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if err := s.engine.Refresh(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	report, updated, _ := s.engine.Current()
	writeJSON(w, map[string]interface{}{
		"data":         report,
		"last_updated": updated,
	})
}

// handleWS pushes each live-session snapshot to the client as it lands.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := make(chan *polymarket.Snapshot, 1)
	s.mu.Lock()
	s.subs[ch] = true
	latest := s.latest
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	// read pump exists only to notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if latest != nil {
		if err := conn.WriteJSON(latest); err != nil {
			return
		}
	}
	for {
		select {
		case <-done:
			return
		case snap := <-ch:
			if err := conn.WriteJSON(snap); err != nil {
				return // client disconnected
			}
		}
	}
}
