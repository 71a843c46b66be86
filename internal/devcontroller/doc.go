// Package devcontroller is an in-memory host controller serving the same
// REST and websocket endpoints as a real one. Services, ports and firewall
// rules live in memory; stats come from the local machine via gopsutil.
package devcontroller
