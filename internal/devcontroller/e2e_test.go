package devcontroller_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/collection"
	"github.com/rileyhilliard/hostdeck/internal/controller"
	"github.com/rileyhilliard/hostdeck/internal/devcontroller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/stream"
	"github.com/rileyhilliard/hostdeck/internal/workflow"
)

func startController(t *testing.T) (*httptest.Server, *controller.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := devcontroller.New(
		devcontroller.WithLogger(logger.Noop()),
		devcontroller.WithInterval(20*time.Millisecond),
		devcontroller.WithSampler(devcontroller.SamplerFunc(func(context.Context) (resource.SystemStats, error) {
			return resource.SystemStats{
				CPU:    resource.CPUStats{UsagePercent: 42},
				System: resource.SystemInfo{Hostname: "e2e", LoadAverage: []float64{1, 1, 1}},
			}, nil
		})),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := controller.NewClient(ts.URL, controller.WithLogger(logger.Noop()))
	require.NoError(t, err)
	return ts, client
}

func TestEndToEnd_ServiceWorkflow(t *testing.T) {
	_, client := startController(t)
	ctx := context.Background()

	services := collection.New[resource.Service](resource.KindService, client.Services(), collection.WithLogger(logger.Noop()))
	defer services.Close()
	require.NoError(t, services.Load(ctx))

	wf := workflow.New(services, logger.Noop())
	err := wf.Run(ctx, resource.ServiceAction("postgresql", resource.ActionStart), func(p workflow.Prompt) (bool, error) {
		assert.Equal(t, "Start service postgresql?", p.Title)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.Idle, wf.State().Phase)

	for _, svc := range services.Items() {
		if svc.Name == "postgresql" {
			assert.Equal(t, resource.ServiceActive, svc.Status, "re-list reflects the mutation")
		}
	}
}

func TestEndToEnd_FirewallRules(t *testing.T) {
	_, client := startController(t)
	ctx := context.Background()

	rules := collection.New[resource.FirewallRule](resource.KindFirewallRule, client.Firewall(), collection.WithLogger(logger.Noop()))
	defer rules.Close()
	require.NoError(t, rules.Load(ctx))
	require.Len(t, rules.Items(), 3)

	req := resource.DefaultRuleRequest()
	req.Port = 8080
	require.NoError(t, rules.Mutate(ctx, resource.CreateRule(req)))
	require.Len(t, rules.Items(), 4)
	created := rules.Items()[3]
	assert.Equal(t, 8080, created.Port)

	require.NoError(t, rules.Mutate(ctx, resource.DeleteRule(created.ID)))
	assert.Len(t, rules.Items(), 3)

	// Deleting again hits a 404 and leaves the collection as it was.
	err := rules.Mutate(ctx, resource.DeleteRule(created.ID))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMutation))
	assert.True(t, controller.IsNotFound(err))
	assert.Len(t, rules.Items(), 3)
	assert.Error(t, rules.Err())
}

func TestEndToEnd_PortsAreReadOnly(t *testing.T) {
	_, client := startController(t)
	ports := collection.New[resource.Port](resource.KindPort, client.Ports(), collection.WithLogger(logger.Noop()))
	defer ports.Close()

	items, err := ports.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)

	err = ports.Mutate(context.Background(), resource.ActionRequest{Kind: resource.KindPort, TargetID: "80/tcp", Action: resource.ActionDelete})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestEndToEnd_Stream(t *testing.T) {
	_, client := startController(t)

	sc := stream.New(client.StreamURL("/ws/stats"), stream.WithLogger(logger.Noop()))
	defer sc.Close()

	got := make(chan resource.SystemStats, 8)
	sc.OnSnapshot(func(s resource.SystemStats) {
		select {
		case got <- s:
		default:
		}
	})
	require.NoError(t, sc.Connect(context.Background()))

	select {
	case s := <-got:
		assert.Equal(t, 42.0, s.CPU.UsagePercent)
		assert.Equal(t, "e2e", s.System.Hostname)
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot received")
	}
	assert.Equal(t, stream.Connected, sc.State())
}
