package store

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aretw0/synapse/pkg/domain"
)

// State is the root state tree, one entry per slice key.
// It is treated as immutable: reducers return new values instead of mutating.
type State map[string]any

// Reducer maps (previous slice, action) to the next slice.
// On the init action the previous slice is nil and the reducer must return its initial value.
// Returning nil is a contract violation.
type Reducer func(state any, action domain.Action) any

// RootReducer reduces the whole tree.
type RootReducer func(state State, action domain.Action) (State, error)

// CombineReducers builds a RootReducer that hands each key its own slice.
// When no slice changes, the previous State itself is returned.
func CombineReducers(reducers map[string]Reducer) RootReducer {
	keys := make([]string, 0, len(reducers))
	for k := range reducers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(state State, action domain.Action) (State, error) {
		changed := state == nil || len(state) != len(keys)
		next := make(State, len(keys))
		for _, key := range keys {
			prev := state[key]
			slice := reducers[key](prev, action)
			if slice == nil {
				return nil, fmt.Errorf("slice %q returned nil for action %q: %w", key, action.Type, domain.ErrReducerContract)
			}
			if !same(prev, slice) {
				changed = true
			}
			next[key] = slice
		}
		if !changed {
			return state, nil
		}
		return next, nil
	}
}

// same reports referential identity for reference kinds and equality for comparable values.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
