/*
Package observability exports runtime metrics in Prometheus format.

Metrics are derived from the runtime's own vocabulary rather than from extra
instrumentation points: a wildcard bus subscription counts events, handler
failures, circuit breaks, plugin init outcomes and cognitive transitions, and a
store middleware counts dispatched actions by type.

Each Metrics value owns a private registry, so several runtimes can live in one
process (and in one test binary).
*/
package observability
