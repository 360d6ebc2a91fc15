// Package session binds a playback engine to the SQLite journal.
//
// A Session owns one engine, one seeded math/rand generator, and one row
// in the sessions table. Every operation draws its random values through
// a recording source and is appended to the journal together with the
// random values it consumed and the engine's state hash afterwards.
//
// # Replay
//
// Open rebuilds a session by feeding the recorded draws back through a
// fresh engine; the generator is then fast-forwarded past every recorded
// draw so new operations continue the original stream. Verify replays a
// journal twice and reports every operation whose state hash disagrees
// with the recording or with the other run.
package session
