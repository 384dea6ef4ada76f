/*
Package history implements the session history: a capacity-bounded,
time-ordered log of interaction outcomes.

Records are evicted oldest-first once the capacity is reached. Rolling
metrics are computed on a Window, an immutable snapshot of the most recent
records, so analysis never observes a half-written buffer.
*/
package history
