package intent

import (
	"github.com/aretw0/synapse/pkg/domain"
)

// Named always interprets the event as intent name, forwarding its payload.
func Named(name string) Rule {
	return func(evt domain.Event) (Intent, bool) {
		return Intent{Name: name, Payload: evt.Payload}, true
	}
}

// Verb uses the part after the namespace as the intent name (gesture:swipe -> intent:swipe).
func Verb() Rule {
	return func(evt domain.Event) (Intent, bool) {
		ns := evt.Namespace()
		if ns == evt.Name {
			return Intent{}, false
		}
		return Intent{Name: evt.Name[len(ns)+1:], Payload: evt.Payload}, true
	}
}

// Action interprets the event as intent name and dispatches actionType with the event payload.
func Action(name, actionType string) Rule {
	return func(evt domain.Event) (Intent, bool) {
		return Intent{
			Name:    name,
			Payload: evt.Payload,
			Action:  &domain.Action{Type: actionType, Payload: evt.Payload},
		}, true
	}
}

// Navigate maps the event to intent:navigate and a navigation/NAVIGATE action towards target.
func Navigate(target string) Rule {
	return func(evt domain.Event) (Intent, bool) {
		return Intent{
			Name:    "navigate",
			Payload: target,
			Action:  &domain.Action{Type: domain.ActionNavigate, Payload: target},
		}, true
	}
}

// When guards rule with a predicate on the raw event.
func When(match func(domain.Event) bool, rule Rule) Rule {
	return func(evt domain.Event) (Intent, bool) {
		if !match(evt) {
			return Intent{}, false
		}
		return rule(evt)
	}
}
