// Package monitor is the live dashboard behind `hostdeck monitor`.
//
// It renders the controller's stats stream: one Bubble Tea model fed by a
// Source (a *stream.Client in production), with cards for CPU, memory,
// disk, network and system info, and sparklines built from a bounded
// history of recent snapshots.
//
// # Message Flow
//
//  1. Init connects the Source and starts waiting on the snapshot bridge.
//  2. Every snapshot the Source delivers becomes a snapshotMsg; the bridge
//     keeps only the newest one if the UI falls behind.
//  3. A tick polls the Source's connection state so the header can show
//     connecting, connected or reconnecting.
//
// The model never dials or retries on its own; reconnect timing belongs to
// the Source. Pressing r asks it to connect now.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Reconnect now
//	j/k, ↑/↓    - Scroll when the cards do not fit
//	?           - Toggle help overlay
//	Esc         - Close help
package monitor
