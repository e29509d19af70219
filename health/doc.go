// Package health reports whether the pieces a guidelinely client depends on
// are usable: the remote service, its database and the local cache.
//
// A Checker returns a Result with a Status of Healthy, Degraded or
// Unhealthy. An Aggregator runs its checkers concurrently under one timeout
// and folds the results into a Report whose status is the worst of its
// checks.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewProbeChecker("api", client.Health))
//	agg.Register(health.NewProbeChecker("ready", client.Ready))
//	agg.Register(health.NewPingChecker("cache", store))
//
//	report := agg.CheckAll(ctx)
//	if report.Status != health.StatusHealthy {
//	    ...
//	}
package health
