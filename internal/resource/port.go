package resource

import "fmt"

// Protocol is a transport protocol. ProtocolAny is only meaningful on
// firewall rules.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
	ProtocolAny Protocol = "any"
)

// PortStatus reports whether a port accepts connections.
type PortStatus string

const (
	PortOpen   PortStatus = "open"
	PortClosed PortStatus = "closed"
)

// Port is a listening port on the host. A port is identified by the pair
// (Number, Protocol); see Key.
type Port struct {
	Number      int        `json:"number" validate:"min=1,max=65535"`
	Protocol    Protocol   `json:"protocol" validate:"oneof=tcp udp"`
	Status      PortStatus `json:"status" validate:"oneof=open closed"`
	Service     string     `json:"service"`
	Description string     `json:"description"`
	AllowedIPs  []string   `json:"allowedIPs,omitempty" validate:"omitempty,dive,cidr|ip"`
}

// Key returns the port identity, e.g. "443/tcp".
func (p Port) Key() string {
	return fmt.Sprintf("%d/%s", p.Number, p.Protocol)
}
