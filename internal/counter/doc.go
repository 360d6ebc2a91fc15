// Package counter holds scope-partitioned play counts.
//
// Every limited entity (node, item within a node, edge from a node) owns
// exactly one counter, filed under the entity's least enclosing scope. The
// three kinds share one keyed table: a Key is (scope, kind, node, sub).
// Entities with an unlimited (-1) limit have no entry; reads report them as
// untracked and writes against them are no-ops.
//
// Storage is index based. The table layout (keys, limits, scope buckets) is
// computed once by New and shared by every Clone; a clone copies only the
// counts slice.
//
// Mutations can be recorded in a journal between Begin and Commit. A
// committed Delta reverts the exact prior values in reverse order, including
// whole-scope snapshots taken by CacheAndZero, so undo is exact even when an
// increment saturated.
package counter
