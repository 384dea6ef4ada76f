package scenario

import (
	"time"

	"github.com/aretw0/synapse/pkg/domain"
)

var builtin = map[string]Scenario{
	"burst": {
		Name:        "burst",
		Description: "A tight run of failed compiles.",
		Expect:      domain.CognitiveFrustrated,
		Steps: []Step{
			{Type: "compile", Duration: 100 * time.Millisecond, Gap: 400 * time.Millisecond, Repeat: 12},
		},
	},
	"recovery": {
		Name:        "recovery",
		Description: "A burst of failures followed by steady successes.",
		Expect:      domain.CognitiveNeutral,
		Steps: []Step{
			{Type: "compile", Duration: 100 * time.Millisecond, Gap: 400 * time.Millisecond, Repeat: 10},
			{Type: "compile", Success: true, Duration: time.Second, Gap: 800 * time.Millisecond, Repeat: 8},
		},
	},
	"focus": {
		Name:        "focus",
		Description: "Fast, uniform, successful edits.",
		Expect:      domain.CognitiveConcentrated,
		Steps: []Step{
			{Type: "edit", Success: true, Duration: 200 * time.Millisecond, Gap: 300 * time.Millisecond, Repeat: 17},
		},
	},
	"explore": {
		Name:        "explore",
		Description: "Unhurried visits to many different places.",
		Expect:      domain.CognitiveExploring,
		Steps: []Step{
			{
				Types: []string{
					"open:readme", "open:docs", "search", "open:api", "hover",
					"open:examples", "scroll", "open:changelog", "filter", "open:faq",
					"zoom", "open:issues", "sort", "open:blog", "preview",
				},
				Success:  true,
				Duration: 600 * time.Millisecond,
				Gap:      1500 * time.Millisecond,
				Repeat:   22,
			},
		},
	},
	"learning": {
		Name:        "learning",
		Description: "Spaced-out mistakes that give way to consistent answers.",
		Expect:      domain.CognitiveLearning,
		Steps: []Step{
			{Type: "quiz", Outcomes: "SFSFFSFSFF", Duration: 900 * time.Millisecond, Gap: 3 * time.Second, Repeat: 10},
			{Type: "quiz", Success: true, Duration: 900 * time.Millisecond, Gap: 500 * time.Millisecond, Repeat: 12},
		},
	},
}
