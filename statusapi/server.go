// Package statusapi 治理核心的只读状态 HTTP 接口
//
// 只暴露数据，不做渲染：仪表盘等上游自己决定呈现方式。
package statusapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/talentmesh/go-talentmesh-core/component"
	"github.com/talentmesh/go-talentmesh-core/governor"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"go.uber.org/zap"
)

// Server read-only status HTTP server
type Server struct {
	config   Config
	governor *governor.Governor
	server   *http.Server
	logger   *logger.CtxZapLogger
	started  bool
	mu       sync.Mutex
}

// ServerOption server option
type ServerOption func(*Server)

// WithServerLogger injects a logger
func WithServerLogger(l *logger.CtxZapLogger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates the status API server
func NewServer(cfg Config, g *governor.Governor, opts ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("governor must not be nil")
	}

	s := &Server{config: cfg, governor: g}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetLogger("talentmesh")
	}
	return s, nil
}

// Handler builds the gin router (exposed for embedding and tests)
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/statusz", s.handleStatus)
	router.GET("/healthz", s.handleHealth)

	return router
}

// handleStatus serves the full governance snapshot
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.governor.GetStatusSnapshot())
}

// handleHealth serves a minimal liveness view
func (s *Server) handleHealth(c *gin.Context) {
	snap := s.governor.GetStatusSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   snap.Mode,
	})
}

// Start launches the HTTP listener
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || s.started {
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.started = true

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("❌ 状态接口监听失败",
				zap.String("addr", s.config.Addr),
				zap.Error(err))
		}
	}()

	s.logger.Info("🌐 状态接口已启动", zap.String("addr", s.config.Addr))
	return nil
}

// Stop shuts the listener down gracefully (idempotent)
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown status api failed: %w", err)
	}
	return nil
}

// Component component.Component adapter for the status API
type Component struct {
	governorComp *governor.Component
	opts         []ServerOption

	server *Server
	mu     sync.RWMutex
}

// NewComponent creates the status API lifecycle component
//
// 依赖 governor 组件：Init 顺序由应用层按 DependsOn 保证
func NewComponent(governorComp *governor.Component, opts ...ServerOption) *Component {
	return &Component{governorComp: governorComp, opts: opts}
}

// Name 组件名称
func (c *Component) Name() string {
	return component.ComponentStatusAPI
}

// DependsOn 声明依赖
func (c *Component) DependsOn() []string {
	return []string{component.ComponentLogger, component.ComponentGovernor}
}

// Init 解析配置并创建服务
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := DefaultConfig()
	if loader.IsSet(component.ComponentStatusAPI) {
		if err := loader.Unmarshal(component.ComponentStatusAPI, &cfg); err != nil {
			return fmt.Errorf("unmarshal statusapi config failed: %w", err)
		}
	}

	g := c.governorComp.Governor()
	if g == nil {
		return fmt.Errorf("governor component not initialized")
	}

	server, err := NewServer(cfg, g, c.opts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.server = server
	c.mu.Unlock()
	return nil
}

// Start 启动 HTTP 监听
func (c *Component) Start(ctx context.Context) error {
	c.mu.RLock()
	server := c.server
	c.mu.RUnlock()

	if server == nil {
		return fmt.Errorf("statusapi component not initialized")
	}
	return server.Start()
}

// Stop 停止 HTTP 监听（幂等）
func (c *Component) Stop(ctx context.Context) error {
	c.mu.RLock()
	server := c.server
	c.mu.RUnlock()

	if server == nil {
		return nil
	}
	return server.Stop(ctx)
}
