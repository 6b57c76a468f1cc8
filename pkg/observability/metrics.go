package observability

import (
	"context"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "teevee"

// movieMacro is the macro whose outcomes are counted as resolutions.
const movieMacro = "MOVIE"

// Metrics holds the collectors.
type Metrics struct {
	Turns       prometheus.Counter
	NodeVisits  *prometheus.CounterVec
	Macros      *prometheus.CounterVec
	Redirects   *prometheus.CounterVec
	Resolutions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "User utterances processed.",
		}),
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Dialogue states entered.",
		}, []string{"node_id"}),
		Macros: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "macro_outcomes_total",
			Help:      "Macro evaluations by outcome kind.",
		}, []string{"macro", "outcome"}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Macro redirects by target state.",
		}, []string{"macro", "target"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movie_resolutions_total",
			Help:      "Movie lookups by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.Turns, m.NodeVisits, m.Macros, m.Redirects, m.Resolutions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnMacro: func(_ context.Context, e *domain.MacroEvent) {
			name := strings.ToUpper(e.Macro)
			m.Macros.WithLabelValues(name, e.Outcome.String()).Inc()
			if e.Outcome == domain.OutcomeRedirect {
				m.Redirects.WithLabelValues(name, e.Target).Inc()
			}
			if name == movieMacro {
				m.Resolutions.WithLabelValues(resolutionResult(e)).Inc()
			}
		},
		OnTurn: func(context.Context, *domain.TurnEvent) {
			m.Turns.Inc()
		},
	}
}

func resolutionResult(e *domain.MacroEvent) string {
	switch e.Outcome {
	case domain.OutcomeRedirect:
		return e.Target
	case domain.OutcomeMatched, domain.OutcomeValue:
		return "resolved"
	default:
		return e.Outcome.String()
	}
}
