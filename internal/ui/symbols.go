package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Command or queue succeeded
	SymbolFail    = "✗" // Command failed or queue stopped
	SymbolPending = "○" // Not yet run
	SymbolSkipped = "⊘" // Cancelled or skipped
	SymbolWarning = "!" // Status notice
	SymbolPrompt  = "›" // Item about to run
)
