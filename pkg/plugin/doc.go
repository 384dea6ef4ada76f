/*
Package plugin orchestrates the lifecycle of capability modules.

Each registered plugin moves through

	registered -> initializing -> initialized -> starting -> started
	-> stopping -> stopped -> destroying -> destroyed

with "failed" reachable from any hook. Hooks are optional: a plugin implements
only the interfaces it needs (Initializer, Starter, Stopper, Destroyer) and the
orchestrator records which ones exist once, at registration.

# Init

Init splits the registry into a critical cohort (priority >= the critical
threshold) and a deferred cohort. Critical plugins initialize concurrently,
each raced against its own timeout; Init returns once all of them settled. An
essential critical plugin that fails or times out aborts Init and leaves the
orchestrator uninitialized. Deferred plugins then initialize one at a time in
the background, followed by "system:deferred-ready". Every plugin that
initializes, critical or deferred, is announced with "plugin:ready".

A hook that loses the race against its timeout keeps running on its own
goroutine; its eventual result is discarded.
*/
package plugin
