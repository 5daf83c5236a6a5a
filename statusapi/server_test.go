package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/component"
	"github.com/talentmesh/go-talentmesh-core/config"
	"github.com/talentmesh/go-talentmesh-core/governor"
	"github.com/talentmesh/go-talentmesh-core/mode"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := governor.DefaultConfig()
	cfg.Mode.Modules = map[string]mode.ModuleConfig{
		"campaigns": {},
	}
	collaborator := analytics.CollaboratorFunc(
		func(ctx context.Context, opType string, payload interface{}) (interface{}, error) {
			return payload, nil
		})
	g, err := governor.New(cfg, collaborator)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Stop() })

	server, err := NewServer(DefaultConfig(), g)
	require.NoError(t, err)
	return server
}

func TestServer_Statusz(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statusz", nil)
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snap governor.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "Normal", snap.Mode)
	assert.NotEmpty(t, snap.RateLimits)
	require.Len(t, snap.Modules, 1)
	assert.Equal(t, "campaigns", snap.Modules[0].ID)
}

func TestServer_Healthz(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Normal", body["mode"])
}

func TestComponent_Lifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	file := filepath.Join(dir, "governor.yaml")
	require.NoError(t, os.WriteFile(file, []byte("statusapi:\n  enabled: false\n"), 0644))

	loader := config.NewLoader(config.Options{ConfigFile: file})
	require.NoError(t, loader.Load())

	collaborator := analytics.CollaboratorFunc(
		func(ctx context.Context, opType string, payload interface{}) (interface{}, error) {
			return payload, nil
		})
	govComp := governor.NewComponent(collaborator)

	ctx := context.Background()
	comp := NewComponent(govComp)
	assert.Equal(t, component.ComponentStatusAPI, comp.Name())
	assert.Contains(t, comp.DependsOn(), component.ComponentGovernor)

	// governor 未初始化时失败
	assert.Error(t, comp.Init(ctx, loader))

	require.NoError(t, govComp.Init(ctx, loader))
	t.Cleanup(func() { _ = govComp.Stop(ctx) })

	require.NoError(t, comp.Init(ctx, loader))
	require.NoError(t, comp.Start(ctx), "enabled=false 时 Start 是空操作")
	require.NoError(t, comp.Stop(ctx))
	require.NoError(t, comp.Stop(ctx), "Stop 必须幂等")
}

func TestServer_DisabledDoesNotListen(t *testing.T) {
	server := newTestServer(t)
	server.config.Enabled = false

	require.NoError(t, server.Start())
	// 未启动监听，Stop 也应当安全
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
}
