package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // operation succeeded
	SymbolFail     = "✗" // operation failed
	SymbolPending  = "○" // not running / not started
	SymbolProgress = "◐" // in progress
	SymbolComplete = "●" // running / open
	SymbolSkipped  = "⊘" // cancelled
	SymbolUnknown  = "?"
)
