package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/atmx/caravan/internal/metrics"
)

func TestWriteTextfile(t *testing.T) {
	metrics.TravelsTotal.Inc()
	metrics.TradesTotal.WithLabelValues("buy").Inc()
	metrics.ObserveAction("buy", time.Now())

	path := filepath.Join(t.TempDir(), "caravan.prom")
	if err := metrics.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"caravan_travels_total", `caravan_trades_total{side="buy"}`, "caravan_action_latency_seconds_bucket"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("textfile missing %s", name)
		}
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("career", "won"))
	metrics.GamesFinished.WithLabelValues("career", "won").Inc()
	if got := testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("career", "won")); got != before+1 {
		t.Errorf("games finished = %v, want %v", got, before+1)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	if err := metrics.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")); err == nil {
		t.Error("expected an error for an unwritable path")
	}
}
