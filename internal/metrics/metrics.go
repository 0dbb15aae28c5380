// Package metrics provides Prometheus instrumentation for caravan sessions.
// There is no HTTP endpoint; WriteTextfile dumps the registry for the
// node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesTotal counts executed trades, partitioned by side.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_trades_total",
		Help: "Total number of trades executed",
	}, []string{"side"})

	// TradeUnits tracks cumulative units traded per good.
	TradeUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_trade_units_total",
		Help: "Cumulative units bought or sold",
	}, []string{"good", "side"})

	// ActionLatency tracks how long the engine takes to apply an action.
	ActionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caravan_action_latency_seconds",
		Help:    "Engine action latency in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"action"})

	// TravelsTotal counts completed travels (turns).
	TravelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caravan_travels_total",
		Help: "Total number of travels",
	})

	// EventsTriggered counts market events, weather and chains that fired.
	EventsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_events_triggered_total",
		Help: "Events triggered by kind (event, weather, chain, season)",
	}, []string{"kind"})

	// LevelUps counts levels gained.
	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caravan_level_ups_total",
		Help: "Levels gained across all sessions",
	})

	// AchievementsUnlocked counts achievement unlocks by id.
	AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_achievements_unlocked_total",
		Help: "Achievements unlocked",
	}, []string{"achievement"})

	// ActionFailures counts rejected actions by failure kind.
	ActionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_action_failures_total",
		Help: "Actions rejected by the engine, by failure kind",
	}, []string{"kind"})

	// SavesTotal counts save attempts by result.
	SavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_saves_total",
		Help: "Save attempts by result (ok, error)",
	}, []string{"result"})

	// GamesFinished counts ended runs by mode and outcome.
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caravan_games_finished_total",
		Help: "Finished games by mode and result",
	}, []string{"mode", "result"})

	// ActiveSessions tracks sessions currently in play.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "caravan_active_sessions",
		Help: "Number of sessions currently in play",
	})
)

// ObserveAction records the latency of one engine action.
func ObserveAction(action string, start time.Time) {
	ActionLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
