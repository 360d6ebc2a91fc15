// Package scope resolves the least enclosing scope of every node and edge.
//
// Scopes are flat tags; their hierarchy is derived from membership. Scope A
// is a superset of scope B when every node tagged B is also tagged A. The
// implicit DefaultScope (-1) contains every node and so sits above every
// declared scope.
//
// # Lattice
//
// Membership is held as one bitset per scope over the tree's nodes (in
// SortedNodeIDs order). NewLattice precomputes, for each scope, the bitset of
// scopes that contain it, so Superset is a single bit test and the order can
// be inspected on its own.
//
// # Least scope
//
// The least scope of a candidate set is its most specific member: a minimal
// element under the superset order. Declared scopes need not form a chain,
// so several minimal elements can exist. The tie-break is:
//
//  1. fewer member nodes wins
//  2. then the lower scope index
//
// Scopes with identical membership are mutual supersets; rule 2 decides.
// An empty candidate set resolves to DefaultScope.
//
// Resolve is a pure function of the tree.
package scope
