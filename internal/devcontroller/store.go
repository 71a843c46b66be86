package devcontroller

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

const (
	// maxLogEntries bounds the journal; the oldest entries are dropped.
	maxLogEntries = 500
	// defaultLogLimit applies when a log query sets no limit.
	defaultLogLimit = 100
	recentErrors    = 5
)

var (
	// ErrServiceNotFound is returned for actions on an unknown service.
	ErrServiceNotFound = stderrors.New("service not found")
	// ErrRuleNotFound is returned when deleting an absent rule.
	ErrRuleNotFound = stderrors.New("firewall rule not found")
)

// Store holds the controller's mutable state. Every change is also
// written to an in-memory log journal served by the log endpoints.
type Store struct {
	mu         sync.RWMutex
	clock      clock.Clock
	services   []resource.Service
	rules      []resource.FirewallRule
	nextID     int
	firewallOn bool
	logs       []resource.LogEntry
}

// NewStore returns a store holding copies of services and rules. Rule ids
// continue after the highest seeded id.
func NewStore(services []resource.Service, rules []resource.FirewallRule) *Store {
	s := &Store{
		clock:      clock.RealClock{},
		services:   append([]resource.Service(nil), services...),
		rules:      append([]resource.FirewallRule(nil), rules...),
		nextID:     1,
		firewallOn: true,
	}
	for _, r := range rules {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

// SetClock replaces the clock used to stamp journal entries.
func (s *Store) SetClock(c clock.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

// SeedStore returns a store populated with a plausible small server.
func SeedStore() *Store {
	s := NewStore(
		[]resource.Service{
			{Name: "nginx", DisplayName: "Nginx", Status: resource.ServiceActive, Port: 80, Description: "Web server", AutoStart: true},
			{Name: "sshd", DisplayName: "OpenSSH", Status: resource.ServiceActive, Port: 22, Description: "Secure shell daemon", AutoStart: true},
			{Name: "postgresql", DisplayName: "PostgreSQL", Status: resource.ServiceInactive, Port: 5432, Description: "Database server"},
			{Name: "docker", DisplayName: "Docker", Status: resource.ServiceFailed, Description: "Container runtime", AutoStart: true},
		},
		[]resource.FirewallRule{
			{ID: 1, Action: resource.RuleAllow, Protocol: resource.ProtocolTCP, Port: 22, Description: "SSH", Enabled: true},
			{ID: 2, Action: resource.RuleAllow, Protocol: resource.ProtocolTCP, Port: 80, Description: "HTTP", Enabled: true},
			{ID: 3, Action: resource.RuleDeny, Protocol: resource.ProtocolTCP, Port: 5432, Source: "0.0.0.0/0", Description: "Block public Postgres", Enabled: true},
		},
	)
	s.Record(resource.LogEntry{Source: "syslog", Level: resource.LogInfo, Message: "Started Nginx web server", ProcessName: "systemd", ProcessID: 1})
	s.Record(resource.LogEntry{Source: "auth.log", Level: resource.LogInfo, Message: "Accepted publickey for deploy", User: "deploy", IP: "10.0.0.4", ProcessName: "sshd"})
	s.Record(resource.LogEntry{Source: "auth.log", Level: resource.LogWarning, Message: "Failed password for root", User: "root", IP: "203.0.113.7", ProcessName: "sshd"})
	s.Record(resource.LogEntry{Source: "syslog", Level: resource.LogError, Message: "docker.service: Main process exited, status=1/FAILURE", ProcessName: "systemd", ProcessID: 1})
	return s
}

// Record appends e to the journal, stamping it with the store clock when
// it has no timestamp.
func (s *Store) Record(e resource.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(e)
}

func (s *Store) recordLocked(e resource.LogEntry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock.Now()
	}
	s.logs = append(s.logs, e)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append([]resource.LogEntry(nil), s.logs[over:]...)
	}
}

// Logs returns the newest entries matching filter, oldest first. A zero
// Limit returns at most defaultLogLimit entries.
func (s *Store) Logs(filter resource.LogFilter) []resource.LogEntry {
	limit := filter.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]resource.LogEntry, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(matched) < limit; i-- {
		if filter.Match(s.logs[i]) {
			matched = append(matched, s.logs[i])
		}
	}
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}

// LogSummary aggregates the whole journal. RecentErrors is newest first.
func (s *Store) LogSummary() resource.LogSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := resource.LogSummary{
		TotalEntries: len(s.logs),
		SourceCounts: map[string]int{},
		RecentErrors: []resource.LogEntry{},
	}
	for i := len(s.logs) - 1; i >= 0; i-- {
		e := s.logs[i]
		sum.SourceCounts[e.Source]++
		switch e.Level {
		case resource.LogError:
			sum.ErrorCount++
			if len(sum.RecentErrors) < recentErrors {
				sum.RecentErrors = append(sum.RecentErrors, e)
			}
		case resource.LogWarning:
			sum.WarningCount++
		}
	}
	if n := len(s.logs); n > 0 {
		sum.LastUpdateTime = s.logs[n-1].Timestamp
	} else {
		sum.LastUpdateTime = s.clock.Now()
	}
	return sum
}

// FirewallEnabled reports whether rules are being enforced.
func (s *Store) FirewallEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firewallOn
}

// SetFirewallEnabled turns enforcement on or off. Rules are kept; while
// the firewall is off every rule is reported as disabled.
func (s *Store) SetFirewallEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firewallOn = enabled
	state := "inactive"
	if enabled {
		state = "active"
	}
	s.recordLocked(resource.LogEntry{Source: "ufw.log", Level: resource.LogInfo, Message: "Firewall " + state, ProcessName: "ufw"})
}

// Services returns all services in insertion order.
func (s *Store) Services() []resource.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]resource.Service(nil), s.services...)
}

// ApplyServiceAction runs action against the named service.
func (s *Store) ApplyServiceAction(name string, action resource.Action) (resource.Service, error) {
	if err := resource.ServiceAction(name, action).Validate(); err != nil {
		return resource.Service{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		svc := &s.services[i]
		if svc.Name != name {
			continue
		}
		switch action {
		case resource.ActionStart, resource.ActionRestart:
			svc.Status = resource.ServiceActive
		case resource.ActionStop:
			svc.Status = resource.ServiceInactive
		case resource.ActionEnable:
			svc.AutoStart = true
		case resource.ActionDisable:
			svc.AutoStart = false
		}
		s.recordLocked(resource.LogEntry{
			Source:      "syslog",
			Level:       resource.LogInfo,
			Message:     fmt.Sprintf("%s.service: %s requested", name, action),
			ProcessName: "systemd",
			ProcessID:   1,
		})
		return *svc, nil
	}
	return resource.Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
}

// Ports derives the port table from services with a port: open while the
// service is active. Allow rules with a source contribute AllowedIPs.
func (s *Store) Ports() []resource.Port {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ports := make([]resource.Port, 0, len(s.services))
	for _, svc := range s.services {
		if svc.Port == 0 {
			continue
		}
		p := resource.Port{
			Number:      svc.Port,
			Protocol:    resource.ProtocolTCP,
			Status:      resource.PortClosed,
			Service:     svc.Name,
			Description: svc.Description,
		}
		if svc.Status == resource.ServiceActive {
			p.Status = resource.PortOpen
		}
		for _, r := range s.rules {
			if s.firewallOn && r.Enabled && r.Action == resource.RuleAllow && r.Port == svc.Port && r.Source != "" {
				p.AllowedIPs = append(p.AllowedIPs, r.Source)
			}
		}
		ports = append(ports, p)
	}
	sort.SliceStable(ports, func(i, j int) bool { return ports[i].Number < ports[j].Number })
	return ports
}

// Rules returns all firewall rules ordered by id. While the firewall is
// off no rule is reported as enabled.
func (s *Store) Rules() []resource.FirewallRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := append([]resource.FirewallRule(nil), s.rules...)
	for i := range rules {
		rules[i].Enabled = rules[i].Enabled && s.firewallOn
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// AddRule validates req and stores it as an enabled rule with a fresh id.
func (s *Store) AddRule(req resource.FirewallRuleRequest) (resource.FirewallRule, error) {
	if err := req.Validate(); err != nil {
		return resource.FirewallRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rule := resource.FirewallRule{
		ID:          s.nextID,
		Action:      req.Action,
		Protocol:    req.Protocol,
		Port:        req.Port,
		Source:      req.Source,
		Description: req.Description,
		Enabled:     true,
	}
	s.nextID++
	s.rules = append(s.rules, rule)
	s.recordLocked(resource.LogEntry{Source: "ufw.log", Level: resource.LogInfo, Message: fmt.Sprintf("Rule %d added: %s", rule.ID, req), ProcessName: "ufw"})
	return rule, nil
}

// DeleteRule removes the rule with id.
func (s *Store) DeleteRule(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.recordLocked(resource.LogEntry{Source: "ufw.log", Level: resource.LogInfo, Message: fmt.Sprintf("Rule %d deleted", id), ProcessName: "ufw"})
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
}
