package governor

import (
	"context"
	"fmt"
	"sync"

	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/component"
)

// Component component.Component adapter for application embedding
//
// Init 阶段从配置加载器解析 "governor" 段并构建核心；
// Start/Stop 托管后台循环的生命周期。
type Component struct {
	collaborator analytics.Collaborator
	opts         []Option

	governor *Governor
	mu       sync.RWMutex
}

// NewComponent creates the governor lifecycle component
func NewComponent(collaborator analytics.Collaborator, opts ...Option) *Component {
	return &Component{collaborator: collaborator, opts: opts}
}

// Name 组件名称
func (c *Component) Name() string {
	return component.ComponentGovernor
}

// DependsOn 声明依赖
func (c *Component) DependsOn() []string {
	return []string{component.ComponentConfig, component.ComponentLogger}
}

// Init 解析配置并构建治理核心
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := DefaultConfig()
	if loader.IsSet(component.ComponentGovernor) {
		if err := loader.Unmarshal(component.ComponentGovernor, &cfg); err != nil {
			return fmt.Errorf("unmarshal governor config failed: %w", err)
		}
	}

	g, err := New(cfg, c.collaborator, c.opts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.governor = g
	c.mu.Unlock()
	return nil
}

// Start 启动后台循环
func (c *Component) Start(ctx context.Context) error {
	g := c.Governor()
	if g == nil {
		return fmt.Errorf("governor component not initialized")
	}
	return g.Start()
}

// Stop 停止后台循环（幂等）
func (c *Component) Stop(ctx context.Context) error {
	g := c.Governor()
	if g == nil {
		return nil
	}
	return g.Stop()
}

// Check 实现健康检查：未启动视为不健康
func (c *Component) Check(ctx context.Context) error {
	g := c.Governor()
	if g == nil {
		return fmt.Errorf("governor not initialized")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return fmt.Errorf("governor not started")
	}
	return nil
}

// Governor returns the built core (nil before Init)
func (c *Component) Governor() *Governor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.governor
}
