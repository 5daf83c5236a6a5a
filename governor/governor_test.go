package governor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"github.com/talentmesh/go-talentmesh-core/ratelimit"
	"github.com/talentmesh/go-talentmesh-core/updates"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode.Modules = map[string]mode.ModuleConfig{
		"campaigns": {},
		"payroll":   {Essential: true},
	}
	cfg.Updates.PollInterval = 10 * time.Millisecond
	return cfg
}

func echoCollaborator() analytics.Collaborator {
	return analytics.CollaboratorFunc(func(ctx context.Context, opType string, payload interface{}) (interface{}, error) {
		return payload, nil
	})
}

func newTestGovernor(t *testing.T, cfg Config) *Governor {
	t.Helper()
	g, err := New(cfg, echoCollaborator())
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Stop() })
	return g
}

func TestNew_FailsFastOnCrossReferences(t *testing.T) {
	// 分析资源未注册
	cfg := testConfig()
	cfg.Analytics.Resource = "quantum_operations"
	_, err := New(cfg, echoCollaborator())
	assert.Error(t, err)

	// 基准间隔表引用了未注册的模块
	cfg = testConfig()
	cfg.Updates.BaseIntervals = map[string]map[string]time.Duration{
		"ghosts": {"metrics": time.Minute},
	}
	_, err = New(cfg, echoCollaborator())
	assert.Error(t, err)

	// 协作方缺失
	cfg = testConfig()
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestGovernor_CheckRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Resources = map[string]ratelimit.ResourceConfig{
		"email":         {Limit: 2, Window: time.Minute},
		"ml_operations": {Limit: 100, Window: time.Minute},
	}
	g := newTestGovernor(t, cfg)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := g.CheckRateLimit(ctx, "email")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := g.CheckRateLimit(ctx, "email")
	require.NoError(t, err)
	assert.False(t, allowed)

	// 未注册资源是配置错误
	_, err = g.CheckRateLimit(ctx, "carrier_pigeon")
	assert.ErrorIs(t, err, ratelimit.ErrUnknownResource)
}

func TestGovernor_UpdatePipelineEndToEnd(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	var dispatched sync.WaitGroup
	dispatched.Add(1)
	var gotPayload interface{}
	require.NoError(t, g.RegisterUpdateCallback("campaigns", "metrics",
		func(ctx context.Context, req *updates.Request) error {
			gotPayload = req.Payload
			dispatched.Done()
			return nil
		}))

	require.NoError(t, g.Start())

	decision, err := g.RequestUpdate(context.Background(), "campaigns", "metrics",
		updates.TriggerUserRequest, "kanban-v3", updates.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, updates.DecisionAdmitted, decision)

	done := make(chan struct{})
	go func() { dispatched.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("更新未在超时前分发")
	}
	assert.Equal(t, "kanban-v3", gotPayload)

	snap := g.GetStatusSnapshot()
	assert.Equal(t, "Normal", snap.Mode)
	require.NotEmpty(t, snap.RecentUpdates)
	assert.Equal(t, updates.OutcomeOK, snap.RecentUpdates[0].Outcome)
	assert.Equal(t, "campaigns", snap.RecentUpdates[0].Key.ModuleID)
}

func TestGovernor_RequestUpdateUnknownModule(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	_, err := g.RequestUpdate(context.Background(), "ghosts", "metrics",
		updates.TriggerUserRequest, nil, updates.PriorityNormal)
	assert.ErrorIs(t, err, mode.ErrUnknownModule)
}

func TestGovernor_CoordinateOperation(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	res, err := g.CoordinateOperation(context.Background(), "candidate_match", 42)
	require.NoError(t, err)
	assert.Equal(t, analytics.StatusOK, res.Status)
	assert.Equal(t, 42, res.Output)
}

func TestGovernor_SnapshotShape(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	snap := g.GetStatusSnapshot()
	assert.Equal(t, "Normal", snap.Mode)
	assert.NotEmpty(t, snap.RateLimits)
	assert.Len(t, snap.Modules, 2)
	assert.Zero(t, snap.QueueDepth)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestGovernor_StartStopIdempotent(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	require.NoError(t, g.Start())
	require.NoError(t, g.Start())
	require.NoError(t, g.Stop())
	require.NoError(t, g.Stop())
	assert.Error(t, g.Start(), "停止后不允许重新启动")
}

func TestGovernor_RegisterModuleAfterConstruction(t *testing.T) {
	g := newTestGovernor(t, testConfig())

	require.NoError(t, g.RegisterModule("onboarding", false))
	assert.ErrorIs(t, g.RegisterModule("onboarding", false), mode.ErrModuleExists)

	decision, err := g.RequestUpdate(context.Background(), "onboarding", "checklist",
		updates.TriggerUserRequest, nil, updates.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, updates.DecisionAdmitted, decision)
}
