// Package engine implements the playtree playback decision engine.
//
// The engine owns a registry of playheads, one per root of the loaded
// playtree, keyed by the root's node id. Each playhead carries its own
// position, history, message log, and a private clone of the seed counters.
// One playhead is current; Advance and Rewind act on it and SwitchPlayhead
// moves the selection.
//
// ADVANCE:
//
// Advance first steps within the current node:
//   - sequencer: count the finished play, bump the multiplicity index, and
//     move down the item list past items that are exhausted or whose
//     multiplier is used up
//   - selector: draw a new item among the eligible ones, weighted by
//     multiplier
//
// When the node has nothing left, the engine traverses edges. Edges are
// grouped by ascending priority; the first group with an eligible edge is
// drawn from, weighted by shares. Every hop counts the edge and zeroes the
// counters of each scope the source has and the target lacks. Targets at
// their play limit, or with nothing eligible, are passed through and the
// walk continues. A TraversalGuard caps the number of hops.
//
// A traversal that finds no eligible edge or exceeds the cap fails. The
// failed walk's counter changes are rolled back, scoped counters are zeroed,
// history is cleared, and the playhead goes back to the start of its run,
// marked stopped. The current selection then moves to the next playhead.
//
// REWIND:
//
// Every successful advance pushes a HistoryNode with the counter delta of
// the step, including the scope snapshots taken on exits. Rewind pops it and
// reverts the delta, so advance followed by rewind restores the playhead's
// position and every counter exactly.
//
// DETERMINISM:
//
// The engine never draws randomness or reads the wall clock. Selector and
// edge draws come from the Randoms passed to each call; message sequence
// numbers come from a SeqSource. The same tree, operations, and draws
// always produce the same snapshots.
package engine
