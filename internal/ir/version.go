package ir

// Version constants for the graph description schema and the tool.
const (
	// SchemaVersion is the graph description schema version.
	SchemaVersion = "1"

	// ToolVersion is the hdlorder version recorded with each run.
	ToolVersion = "0.1.0"
)
