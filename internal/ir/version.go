package ir

const (
	// JournalVersion is the schema version of journaled records.
	JournalVersion = "1"

	// EngineVersion is recorded on every session so replays can detect
	// a journal written by a different engine.
	EngineVersion = "0.1.0"
)
