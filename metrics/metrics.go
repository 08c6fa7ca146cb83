package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contatos",
		Name:      "transfers_total",
		Help:      "Tentativas de transferência por tipo de ativo e resultado.",
	}, []string{"kind", "outcome"})

	balanceFetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contatos",
		Name:      "balance_fetch_seconds",
		Help:      "Duração da agregação de saldos.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordTransfer conta uma tentativa de envio ("native" ou "token").
func RecordTransfer(kind string, err error) {
	transfersTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func ObserveBalanceFetch(start time.Time, err error) {
	balanceFetchSeconds.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
}

// Handler expõe as métricas no formato do Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
