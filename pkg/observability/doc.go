/*
Package observability turns flow lifecycle events into structured logs and
Prometheus metrics.

Hooks are plain domain.LifecycleHooks values, so they can be merged and passed to
the flow controller and prompt sessions:

	m := observability.NewMetrics()
	hooks := observability.LoggingHooks(logger).Merge(m.Hooks())

Metrics live on a private registry; Handler exposes it for scraping.
*/
package observability
