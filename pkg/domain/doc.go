/*
Package domain contains the core vocabulary of the synapse runtime.

It defines the messages that flow between components (Events and Actions),
the interaction outcomes recorded in the session history, the lifecycle
states of plugins and the cognitive states reported by the detector. This
package is kept pure and free of I/O so that every other package can depend
on it.

# Key Entities

  - Event: an immutable broadcast message carried by the event bus.
  - Action: an immutable command consumed by the store's reducer pipeline.
  - ActionRecord: one interaction outcome appended to the session history.
  - PluginState: the lifecycle position of a registered plugin.
  - CognitiveState: a coarse classification of recent interaction patterns.

# Naming

Raw collaborator input uses "<namespace>:<verb>" (gesture:swipe, keyboard:press),
interpreted commands use "intent:<action>", diagnostics use "system:<signal>"
and store actions use "<domain>/<VERB>".
*/
package domain
