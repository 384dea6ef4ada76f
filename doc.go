/*
Package synapse is an in-process, event-driven plugin runtime.

A Runtime composes four cooperating parts behind one instance object:

  - an event bus with priority-ordered subscribers and a circuit breaker
    that refuses cyclic or runaway re-emission;
  - an action store built from slice reducers and composable middleware;
  - a plugin lifecycle orchestrator that initializes critical plugins in
    parallel under per-plugin timeouts and defers the rest to the background;
  - a cognitive state detector that classifies recent interaction outcomes
    (frustrated, concentrated, exploring, learning, neutral) with debounced,
    cooldown-aware transitions.

# Control Flow

Raw collaborator events ("gesture:swipe", "voice:open") enter the bus, are
interpreted into "intent:<name>" events and store actions, pass through the
store middleware (where the detector lives) and reach the reducers. Plugins and
other subscribers react to the resulting events.

# Usage

	rt, err := synapse.New(config.Default(),
		synapse.WithIntent("gesture:swipe-left", intent.Navigate("previous")),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close(context.Background())

	_ = rt.Register(&plugin.Hooks{
		ID:       "audit",
		Priority: 100,
		OnInit: func(ctx context.Context, host plugin.Host) error {
			host.Subscribe("intent:*", func(ctx context.Context, evt domain.Event) error {
				host.Logger().Info("intent", "name", evt.Name)
				return nil
			})
			return nil
		},
	})

	ctx := context.Background()
	if err := rt.Init(ctx); err != nil {
		log.Fatal(err)
	}
	_ = rt.Start(ctx)

	rt.Emit(ctx, "gesture:swipe-left", nil)
	_ = rt.RecordInteraction(ctx, domain.ActionRecord{Type: "open", Success: true, Duration: 200 * time.Millisecond})
*/
package synapse
