// Package metrics exposes Prometheus instrumentation for the rewrite
// pipeline and command usage. All collectors are safe for concurrent use.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesMatched counts messages in which the scanner found at least
	// one time token.
	MessagesMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hourglass_messages_matched_total",
		Help: "Messages containing at least one recognized time token.",
	})

	// Conversions counts confirmed rewrites that were reposted.
	Conversions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hourglass_conversions_total",
		Help: "Messages rewritten and reposted after author confirmation.",
	})

	// Previews counts private previews sent to non-author reactors.
	Previews = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hourglass_previews_total",
		Help: "Private previews sent to users other than the author.",
	})

	// ConfirmTimeouts counts confirmation prompts that expired unanswered.
	ConfirmTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hourglass_confirm_timeouts_total",
		Help: "Confirmation prompts that timed out without an author reaction.",
	})

	// Usage counts command and conversion usage by kind.
	Usage = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hourglass_usage_total",
		Help: "Usage events by kind.",
	}, []string{"kind"})

	// GuildCount gauges how many guilds the bot currently sees.
	GuildCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hourglass_guilds",
		Help: "Number of guilds the bot is connected to.",
	})
)

func init() {
	prometheus.MustRegister(MessagesMatched, Conversions, Previews, ConfirmTimeouts, Usage, GuildCount)
}

// Serve blocks serving the /metrics endpoint on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
