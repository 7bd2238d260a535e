package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder собирает метрики турнира в собственный prometheus.Registry.
// Все методы безопасны для nil-получателя: сервисы в тестах создаются без метрик.
type Recorder struct {
	registry *prometheus.Registry

	stageGenerations   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	scoreSubmissions   *prometheus.CounterVec
	tabulationCache    *prometheus.CounterVec
	roundsCompleted    prometheus.Counter
}

// Результаты операций для label "result"
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// NewRecorder создает и регистрирует метрики
func NewRecorder(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		stageGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debate_tab",
			Name:      "stage_generations_total",
			Help:      "Stage generation attempts by stage number and result.",
		}, []string{"stage", "result"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "debate_tab",
			Name:      "stage_generation_duration_seconds",
			Help:      "Duration of successful stage generations.",
			Buckets:   prometheus.DefBuckets,
		}),
		scoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debate_tab",
			Name:      "score_submissions_total",
			Help:      "Score submissions by result.",
		}, []string{"result"}),
		tabulationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debate_tab",
			Name:      "tabulation_cache_total",
			Help:      "Tabulation cache lookups by outcome (hit, miss).",
		}, []string{"outcome"}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "debate_tab",
			Name:      "rounds_completed_total",
			Help:      "Rounds moved to the completed state.",
		}),
	}
	registry.MustRegister(
		r.stageGenerations,
		r.generationDuration,
		r.scoreSubmissions,
		r.tabulationCache,
		r.roundsCompleted,
	)
	return r
}

// Registry возвращает реестр для promhttp
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) StageGenerated(stage string, result string, took time.Duration) {
	if r == nil {
		return
	}
	r.stageGenerations.WithLabelValues(stage, result).Inc()
	if result == ResultOK {
		r.generationDuration.Observe(took.Seconds())
	}
}

func (r *Recorder) ScoreSubmitted(result string) {
	if r == nil {
		return
	}
	r.scoreSubmissions.WithLabelValues(result).Inc()
}

func (r *Recorder) TabulationCache(hit bool) {
	if r == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.tabulationCache.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RoundCompleted() {
	if r == nil {
		return
	}
	r.roundsCompleted.Inc()
}
