package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/hostdeck/internal/collection"
	"github.com/rileyhilliard/hostdeck/internal/config"
	"github.com/rileyhilliard/hostdeck/internal/controller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/stream"
	"github.com/rileyhilliard/hostdeck/internal/telemetry"
	"github.com/rileyhilliard/hostdeck/internal/transport"
)

// session holds everything a command needs to talk to one controller.
// Close releases the tunnel and stops the metrics listener.
type session struct {
	cfg       *config.Config
	log       logger.Logger
	metrics   *telemetry.Metrics
	transport *transport.Transport
	client    *controller.Client

	stopMetrics context.CancelFunc
	metricsDone chan struct{}
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logger.Default()
	metrics := telemetry.New()
	tr := transport.New(transport.FromConfig(cfg))

	opts := []controller.ClientOption{
		controller.WithHTTPClient(tr.HTTPClient()),
		controller.WithMetrics(metrics),
		controller.WithLogger(logger.NewEnvLogger("[controller]")),
	}
	for name, value := range cfg.Controller.Headers {
		opts = append(opts, controller.WithHeader(name, value))
	}
	client, err := controller.NewClient(cfg.Controller.URL, opts...)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		transport: tr,
		client:    client,
	}
	if err := s.startMetrics(ctx); err != nil {
		_ = tr.Close()
		return nil, err
	}
	if tr.Tunneled() {
		log.Debug("tunneling controller traffic through %s", cfg.Controller.SSH)
	}
	return s, nil
}

func (s *session) startMetrics(ctx context.Context) error {
	addr := s.cfg.Metrics.Listen
	if addr == "" {
		return nil
	}
	srv, err := telemetry.Listen(addr, s.metrics, s.log)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't listen for metrics on %s", addr),
			"Pick a free address for metrics.listen, or leave it empty")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.stopMetrics = cancel
	s.metricsDone = make(chan struct{})
	go func() {
		defer close(s.metricsDone)
		if err := srv.Serve(ctx); err != nil {
			s.log.Warn("metrics server stopped: %v", err)
		}
	}()
	return nil
}

// stream builds an unconnected stats stream client for the configured
// stream path.
func (s *session) stream() *stream.Client {
	return stream.New(s.client.StreamURL(s.cfg.Controller.StreamPath),
		stream.WithDialer(s.transport.WebsocketDialer()),
		stream.WithHeader(s.client.Header()),
		stream.WithReconnectDelay(s.cfg.Stream.ReconnectDelay),
		stream.WithReadTimeout(s.cfg.Stream.ReadTimeout),
		stream.WithMetrics(s.metrics),
		stream.WithLogger(logger.NewEnvLogger("[stream]")),
	)
}

func (s *session) collectionOpts() []collection.Option {
	return []collection.Option{
		collection.WithMetrics(s.metrics),
		collection.WithLogger(logger.NewEnvLogger("[collection]")),
	}
}

func (s *session) services() *collection.Controller[resource.Service] {
	return collection.New[resource.Service](resource.KindService, s.client.Services(), s.collectionOpts()...)
}

func (s *session) ports() *collection.Controller[resource.Port] {
	return collection.New[resource.Port](resource.KindPort, s.client.Ports(), s.collectionOpts()...)
}

func (s *session) firewall() *collection.Controller[resource.FirewallRule] {
	return collection.New[resource.FirewallRule](resource.KindFirewallRule, s.client.Firewall(), s.collectionOpts()...)
}

func (s *session) Close() error {
	if s.stopMetrics != nil {
		s.stopMetrics()
		<-s.metricsDone
	}
	return s.transport.Close()
}

// withSession opens a session on the resolved config, runs fn, and closes it.
func withSession(ctx context.Context, fn func(*session) error) error {
	s, err := openSession(ctx, currentConfig)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
