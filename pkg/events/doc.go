/*
Package events implements the runtime's event channel: a synchronous,
priority-ordered publish/subscribe bus with a circuit breaker.

# Delivery

Emit delivers to every matching subscriber before returning, in descending
priority with ties broken by registration order. Patterns are exact names,
the "*" wildcard, or a namespace wildcard such as "gesture:*". Middleware
installed with Use runs before delivery and may transform or cancel the
event.

A failing handler (error or panic) never stops delivery to the others: the
failure is logged and re-raised as a "system:error" event.

# Circuit breaker

Every emission carries its call chain in the context. Handlers that emit
further events must pass the context they were given, which lets the bus
refuse emissions that recur inside their own chain (A -> B -> C -> A) or that
nest past the configured depth, raising "system:circuit-breaker" instead of
exhausting the stack. The report starts a chain of its own.

Code that emits from a fresh context escapes the chain. For that case the bus
also caps the number of deliveries running at once (Breaker.MaxInFlight).
*/
package events
