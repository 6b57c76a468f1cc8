/*
Package observability exports conversation metrics to Prometheus.

Metrics are fed by the engine's lifecycle hooks:

	m, err := observability.NewMetrics(prometheus.NewRegistry())
	eng, err := teevee.New(teevee.WithLifecycleHooks(m.Hooks()))

Movie lookups are counted from the MOVIE macro events, labeled by the state
they led to.
*/
package observability
