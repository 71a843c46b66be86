// Package resource defines the value types exchanged with a controller:
// the SystemStats snapshot pushed over the stats stream, the Service, Port
// and FirewallRule records returned by the list endpoints, and the
// ActionRequest that describes a mutation against one of them.
//
// Values decoded from the wire are checked with go-playground/validator
// struct tags before they reach the rest of the program.
package resource
