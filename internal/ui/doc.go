// Package ui renders hostdeck's terminal output: resource tables, usage
// bars and sparklines, a request spinner, and the confirmation prompt.
//
// Colors come from one neon palette. ConfigureColor applies the
// output.color setting (auto, always, never) and --no-color by switching
// the global lipgloss profile, so every style in this package and in the
// monitor dashboard follows it.
//
//	ui.ConfigureColor(cfg.Output.Color, noColor)
//	fmt.Print(ui.ServicesTable(services))
//
// Confirm wraps a huh confirm field and refuses to prompt when stdin or
// stdout is not a terminal.
package ui
