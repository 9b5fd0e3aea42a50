// Package analytics aggregates stored snapshot history into the summary
// payload served at /data. Results are cached and recomputed on demand or on
// the cron schedule.
package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/poly-watch/pkg/polymarket"
)

// SnapshotSource is the slice of the store the engine reads.
type SnapshotSource interface {
	LoadSnapshots(limit int) ([]polymarket.Snapshot, error)
}

// WalletSummary aggregates the latest snapshot's view of one wallet.
type WalletSummary struct {
	Address       string  `json:"address"`
	PositionCount int     `json:"position_count"`
	OrderCount    int     `json:"order_count"`
	TotalValue    float64 `json:"total_value"`
	Errored       bool    `json:"errored"`
}

// MarketExposure is total mark-to-market value held in one market across all
// tracked wallets.
type MarketExposure struct {
	Slug     string  `json:"slug"`
	Question string  `json:"question"`
	Value    float64 `json:"value"`
}

// ExposurePoint is one snapshot's total tracked value, for the time series.
type ExposurePoint struct {
	RequestedAt time.Time `json:"requested_at"`
	TotalValue  float64   `json:"total_value"`
	ErrorCount  int       `json:"error_count"`
}

// Report is the /data payload.
type Report struct {
	SnapshotCount int              `json:"snapshot_count"`
	Wallets       []WalletSummary  `json:"wallets"`
	TopMarkets    []MarketExposure `json:"top_markets"`
	Series        []ExposurePoint  `json:"series"`
}

type Engine struct {
	source SnapshotSource
	window int

	mu          sync.RWMutex
	report      Report
	lastUpdated time.Time
}

func NewEngine(source SnapshotSource, window int) *Engine {
	if window <= 0 {
		window = 200
	}
	return &Engine{source: source, window: window}
}

// Current returns the cached report and when it was computed. ok=false means
// no refresh has completed yet.
func (e *Engine) Current() (Report, time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.report, e.lastUpdated, !e.lastUpdated.IsZero()
}

// Refresh recomputes the report from stored history.
func (e *Engine) Refresh() error {
	snaps, err := e.source.LoadSnapshots(e.window)
	if err != nil {
		return err
	}

	report := build(snaps)

	e.mu.Lock()
	e.report = report
	e.lastUpdated = time.Now().UTC()
	e.mu.Unlock()

	log.Debug().Int("snapshots", report.SnapshotCount).Msg("analytics refreshed")
	return nil
}

func build(snaps []polymarket.Snapshot) Report {
	report := Report{SnapshotCount: len(snaps)}
	if len(snaps) == 0 {
		return report
	}

	// snaps arrive newest first; the series reads oldest to newest
	for i := len(snaps) - 1; i >= 0; i-- {
		snap := snaps[i]
		point := ExposurePoint{RequestedAt: snap.RequestedAt}
		for _, r := range snap.Results {
			if r.Error != "" {
				point.ErrorCount++
				continue
			}
			for _, p := range r.Positions {
				if p.Value != nil {
					point.TotalValue += *p.Value
				}
			}
		}
		report.Series = append(report.Series, point)
	}

	latest := snaps[0]
	markets := map[string]*MarketExposure{}
	for _, r := range latest.Results {
		ws := WalletSummary{Address: r.Address, Errored: r.Error != ""}
		if r.Error == "" {
			ws.PositionCount = len(r.Positions)
			ws.OrderCount = len(r.OpenOrders)
			for _, p := range r.Positions {
				if p.Value == nil {
					continue
				}
				ws.TotalValue += *p.Value
				m, ok := markets[p.Slug]
				if !ok {
					m = &MarketExposure{Slug: p.Slug, Question: p.Question}
					markets[p.Slug] = m
				}
				m.Value += *p.Value
			}
		}
		report.Wallets = append(report.Wallets, ws)
	}

	for _, m := range markets {
		report.TopMarkets = append(report.TopMarkets, *m)
	}
	sort.Slice(report.TopMarkets, func(i, j int) bool {
		if report.TopMarkets[i].Value != report.TopMarkets[j].Value {
			return report.TopMarkets[i].Value > report.TopMarkets[j].Value
		}
		return report.TopMarkets[i].Slug < report.TopMarkets[j].Slug
	})
	if len(report.TopMarkets) > 10 {
		report.TopMarkets = report.TopMarkets[:10]
	}

	return report
}
