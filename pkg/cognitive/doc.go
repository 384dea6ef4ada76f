/*
Package cognitive classifies recent interaction patterns into coarse
behavioral states (frustrated, concentrated, exploring, learning, neutral).

Each analysis tick evaluates every analyzer over the session history, picks
the highest-priority qualifying state and casts one vote for it. A transition
commits only after DebounceTicks consecutive votes for the same non-current
state, which keeps the reported state from oscillating on noisy input.

Recovery cooldowns suppress one transition for a number of recorded actions
after leaving a state. The default blocks "exploring" for 100 actions after
"frustrated": a recovery burst of rapid, varied, successful actions looks
statistically identical to exploration and must settle through neutral or
concentrated first.
*/
package cognitive
