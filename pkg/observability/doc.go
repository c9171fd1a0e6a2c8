/*
Package observability provides lifecycle hooks for monitoring the inference loop.

Metrics records Prometheus series for iterations, the constraint count, oracle
latency and terminal outcomes. LogHooks emits one structured log record per
event. Both return domain.LifecycleHooks and can be combined with Merge.
*/
package observability
