package devcontroller

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

const (
	// DefaultInterval is how often stats frames are pushed.
	DefaultInterval = 2 * time.Second
	writeWait       = 10 * time.Second
)

// Server serves the controller API over gin.
type Server struct {
	store    *Store
	sampler  Sampler
	interval time.Duration
	log      logger.Logger
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithStore replaces the seeded store.
func WithStore(s *Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithSampler replaces the gopsutil sampler.
func WithSampler(s Sampler) Option {
	return func(srv *Server) { srv.sampler = s }
}

// WithInterval sets the stats push interval.
func WithInterval(d time.Duration) Option {
	return func(srv *Server) {
		if d > 0 {
			srv.interval = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(srv *Server) { srv.log = l }
}

// New builds a server with routes registered.
func New(opts ...Option) *Server {
	srv := &Server{
		store:    SeedStore(),
		sampler:  HostSampler{},
		interval: DefaultInterval,
		log:      logger.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(srv)
	}

	r := gin.New()
	r.Use(gin.Recovery(), srv.requestLog())

	api := r.Group("/api")
	api.GET("/health", srv.health)
	api.GET("/services", srv.listServices)
	api.POST("/services/:name/action", srv.serviceAction)
	api.GET("/ports", srv.listPorts)
	api.GET("/firewall/rules", srv.listRules)
	api.POST("/firewall/rules", srv.createRule)
	api.DELETE("/firewall/rules/:id", srv.deleteRule)
	api.POST("/firewall/enable", srv.setFirewall(true))
	api.POST("/firewall/disable", srv.setFirewall(false))
	api.GET("/logs", srv.listLogs)
	api.GET("/logs/stats", srv.logStats)
	r.GET("/ws/stats", srv.streamStats)

	srv.engine = r
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Services())
}

type actionBody struct {
	Action resource.Action `json:"action" binding:"required"`
}

func (s *Server) serviceAction(c *gin.Context) {
	var body actionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	name := c.Param("name")
	svc, err := s.store.ApplyServiceAction(name, body.Action)
	switch {
	case stderrors.Is(err, ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("cannot %s %s", body.Action, name)})
		return
	}

	s.log.Info("service %s: %s -> %s", name, body.Action, svc.Status)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Service %s %s", name, pastTense(body.Action)),
	})
}

func (s *Server) listPorts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Ports())
}

func (s *Server) listRules(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Rules())
}

func (s *Server) createRule(c *gin.Context) {
	var req resource.FirewallRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid rule body"})
		return
	}
	rule, err := s.store.AddRule(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid firewall rule: " + req.String()})
		return
	}
	s.log.Info("firewall rule %d added: %s", rule.ID, req.String())
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) deleteRule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid rule id"})
		return
	}
	if err := s.store.DeleteRule(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	s.log.Info("firewall rule %d deleted", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Rule %d deleted", id)})
}

func (s *Server) setFirewall(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.store.SetFirewallEnabled(enabled)
		msg := "Firewall disabled"
		if enabled {
			msg = "Firewall enabled"
		}
		s.log.Info("%s", msg)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
	}
}

type logQuery struct {
	Source    string    `form:"source"`
	Level     string    `form:"level"`
	Search    string    `form:"search"`
	StartTime time.Time `form:"startTime" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"endTime" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int       `form:"limit"`
}

func (s *Server) listLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log query"})
		return
	}
	filter := resource.LogFilter{
		Source: q.Source,
		Level:  resource.LogLevel(q.Level),
		Search: q.Search,
		Since:  q.StartTime,
		Until:  q.EndTime,
		Limit:  q.Limit,
	}
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log filter"})
		return
	}
	c.JSON(http.StatusOK, s.store.Logs(filter))
}

func (s *Server) logStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.LogSummary())
}

// streamStats pushes a snapshot immediately and then every interval until
// the client goes away.
func (s *Server) streamStats(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("stats upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		stats, err := s.sampler.Sample(ctx)
		if err != nil {
			s.log.Debug("stats sample failed: %v", err)
		} else {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(stats); err != nil {
				return
			}
		}

		select {
		case <-ticker.C:
		case <-gone:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}

func pastTense(a resource.Action) string {
	switch a {
	case resource.ActionStop:
		return "stopped"
	case resource.ActionEnable, resource.ActionDisable:
		return string(a) + "d"
	}
	return string(a) + "ed"
}
