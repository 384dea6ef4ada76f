/*
Package store implements the action store: a unidirectional state container.

A dispatched Action travels through the middleware chain (outermost first),
then through the root reducer, and finally every listener is notified exactly
once. CombineReducers builds the root reducer from per-key slice reducers and
keeps untouched slices referentially identical, so listeners can detect change
with a cheap identity comparison.
*/
package store
