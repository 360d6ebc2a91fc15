// Package playtree defines the authored graph that the playback engine walks.
//
// A Playtree is a set of Playnodes keyed by id. Each node holds an ordered list
// of Playitems and a list of outgoing Playedges. Nodes can be tagged with
// Playscopes, and nodes marked by a Playroot spawn a playhead.
//
// # Sentinels
//
// Limits use Unlimited (-1) for "no cap". The sentinel must survive every
// serialization round trip: a limit of 0 means "never", not "unset".
// Scope index DefaultScope (-1) is the implicit universal scope.
//
// # Identity
//
// ContentHash returns a content-addressed identity for a tree, computed over
// RFC 8785 canonical JSON with domain separation. The stored session journal
// uses it to detect a tree that changed underneath a session.
//
// Nothing in this package performs I/O except Decode/LoadFile, which exist for
// the outer shell; the engine consumes already-decoded trees.
package playtree
