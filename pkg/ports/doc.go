/*
Package ports defines the narrow interfaces the synapse components use to
reach each other.

The orchestrator and the detector never hold the concrete bus or store; they
see only the capability they need, which keeps each component testable with a
hand-written fake.

# Key Interfaces

  - Emitter: raises events on the event bus.
  - Dispatcher: sends actions through the store's middleware chain.
*/
package ports
