// Package harness runs YAML playback scenarios against the engine.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	tree: trees/linear.yaml        # relative to the scenario file
//	max_traversal_steps: 3         # optional
//	load:
//	  draws: {selector: [0.5]}
//	steps:
//	  - advance: song_ended
//	    draws: {edge: [0.9]}
//	    expect:
//	      node: b
//	      item: b1
//	      outcome: traversed
//	      route: ["a->b"]
//	  - rewind: true
//	  - switch: next
//	assertions:
//	  - type: final_state
//	    playhead: a
//	    node: a
//	  - type: counter
//	    playhead: a
//	    key: "node[-1] a"
//	    count: 1
//
// Each step names exactly one of advance, rewind, or switch. Draws listed
// for a step are replayed in order; the last value repeats if the engine
// needs more, and an absent list draws 0.
//
// # Assertion Types
//
//   - final_state: A playhead's node, item, and stopped flag after the run
//   - counter: One counter of a playhead, by key string
//   - message_contains: A playhead's message log contains some text
//   - items_played: The item ids current after each advance, in order
//
// # Replay
//
// Every scenario is journaled to an in-memory store as it runs and then
// verified by replaying the journal, so each scenario also checks that its
// run is reproducible from the recorded draws.
package harness
