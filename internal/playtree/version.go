package playtree

// Version constants for the tree format and engine.
const (
	// FormatVersion is the serialized playtree format version.
	FormatVersion = "1"

	// EngineVersion is the playback engine version recorded in sessions.
	EngineVersion = "0.3.0"
)
