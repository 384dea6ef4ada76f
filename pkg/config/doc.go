/*
Package config loads the runtime configuration.

Files are YAML or JSON (chosen by extension). Keys are snake_case, durations
are Go duration strings ("250ms", "5s"), and every key is optional: values
missing from the file keep their defaults.

	events:
	  circuit_breaker: true
	  max_call_depth: 100
	  max_chain_length: 50
	plugins:
	  critical_priority: 100
	  init_timeout: 5s
	cognitive:
	  history_capacity: 100
	  debounce_ticks: 3
	  recovery_cooldown: 100
	  thresholds:
	    frustrated: {window: 10, error_rate: 0.4}
*/
package config
