package resource

import (
	"encoding/json"
)

// ServiceStatus is the run state reported for an OS service.
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
	ServiceFailed   ServiceStatus = "failed"
	ServiceUnknown  ServiceStatus = "unknown"
)

// UnmarshalJSON maps any status string the controller sends that is not
// one of the known states to ServiceUnknown.
func (s *ServiceStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch ServiceStatus(raw) {
	case ServiceActive, ServiceInactive, ServiceFailed:
		*s = ServiceStatus(raw)
	default:
		*s = ServiceUnknown
	}
	return nil
}

// Service is an OS service managed by the controller. Name is its identity.
type Service struct {
	Name        string        `json:"name" validate:"required"`
	DisplayName string        `json:"displayName"`
	Status      ServiceStatus `json:"status"`
	Port        int           `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Description string        `json:"description"`
	AutoStart   bool          `json:"autoStart"`
}

// Label returns the display name, falling back to the service name.
func (s Service) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}
