package mode

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/talentmesh/go-talentmesh-core/loadmon"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"go.uber.org/zap"
)

// ChangeListener notified after a committed mode transition
type ChangeListener func(from, to Mode)

// Controller system mode state machine
//
// Consumes classified load levels (normally wired to loadmon.Monitor) and
// owns the SystemMode. All other components read the mode through Current().
type Controller struct {
	config  Config
	current Mode

	// hysteresis bookkeeping
	pending       Mode
	pendingStreak int

	modules   map[string]*moduleState
	listeners []ChangeListener

	lastChange time.Time
	logger     *logger.CtxZapLogger
	nowFunc    func() time.Time
	mu         sync.RWMutex
}

// ControllerOption controller option
type ControllerOption func(*Controller)

// WithLogger injects a logger
func WithLogger(l *logger.CtxZapLogger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithNowFunc injects a clock (tests)
func WithNowFunc(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.nowFunc = now }
}

// NewController creates a mode controller; modules come from cfg.Modules
func NewController(cfg Config, opts ...ControllerOption) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Controller{
		config:  cfg,
		current: ModeNormal,
		pending: ModeNormal,
		modules: make(map[string]*moduleState),
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.GetLogger("talentmesh")
	}
	c.lastChange = c.nowFunc()

	for id, mc := range cfg.Modules {
		c.modules[id] = newModuleState(id, mc.Essential)
	}

	return c, nil
}

// RegisterModule adds a module class after construction (startup wiring)
func (c *Controller) RegisterModule(id string, essential bool) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownModule)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[id]; exists {
		return fmt.Errorf("%w: %q", ErrModuleExists, id)
	}
	c.modules[id] = newModuleState(id, essential)
	return nil
}

// Current returns the current system mode
func (c *Controller) Current() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// OnClassification feeds one classified load sample into the state machine
//
// Hysteresis: a candidate mode different from the current one must persist
// for EscalateSamples (up) or RecoverSamples (down) consecutive samples
// before the transition commits. A sample matching the current mode clears
// any pending streak.
func (c *Controller) OnClassification(cls loadmon.Classification) {
	candidate := FromLevel(cls.Level)

	c.mu.Lock()

	if candidate == c.current {
		c.pending = c.current
		c.pendingStreak = 0
		c.mu.Unlock()
		return
	}

	if candidate != c.pending {
		c.pending = candidate
		c.pendingStreak = 0
	}
	c.pendingStreak++

	required := c.config.EscalateSamples
	if candidate.Severity() < c.current.Severity() {
		required = c.config.RecoverSamples
	}

	if c.pendingStreak < required {
		c.mu.Unlock()
		return
	}

	from := c.current
	c.transitionTo(candidate)
	listeners := make([]ChangeListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	c.logger.Info("🔀 系统模式切换",
		zap.String("from", from.String()),
		zap.String("to", candidate.String()),
		zap.Float64("score", cls.Score))

	for _, l := range listeners {
		l(from, candidate)
	}
}

// Subscribe registers a mode change listener
func (c *Controller) Subscribe(l ChangeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// ModuleEnabled reports whether the module class may do work right now
func (c *Controller) ModuleEnabled(id string) (bool, error) {
	c.mu.RLock()
	s, exists := c.modules[id]
	c.mu.RUnlock()

	if !exists {
		return false, fmt.Errorf("%w: %q", ErrUnknownModule, id)
	}
	return s.isEnabled(), nil
}

// IsEssential reports whether the module class is flagged essential
func (c *Controller) IsEssential(id string) bool {
	c.mu.RLock()
	s, exists := c.modules[id]
	c.mu.RUnlock()
	return exists && s.essential
}

// Has reports whether the module class is registered
func (c *Controller) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.modules[id]
	return ok
}

// OpStarted records the start of one operation for the module
func (c *Controller) OpStarted(id string) {
	c.mu.RLock()
	s, exists := c.modules[id]
	c.mu.RUnlock()
	if exists {
		s.opStarted(c.nowFunc())
	}
}

// OpFinished records the end of one operation for the module
func (c *Controller) OpFinished(id string) {
	c.mu.RLock()
	s, exists := c.modules[id]
	c.mu.RUnlock()
	if exists {
		s.opFinished()
	}
}

// RecordError increments the module's error counter
func (c *Controller) RecordError(id string) {
	c.mu.RLock()
	s, exists := c.modules[id]
	c.mu.RUnlock()
	if exists {
		s.recordError()
	}
}

// TotalActiveOps sums active operations across all modules
func (c *Controller) TotalActiveOps() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, s := range c.modules {
		total += s.snapshot().ActiveOps
	}
	return total
}

// ModuleSnapshots returns read-only views of every module, sorted by id
func (c *Controller) ModuleSnapshots() []ModuleSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ModuleSnapshot, 0, len(c.modules))
	for _, s := range c.modules {
		out = append(out, s.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LastChange returns when the mode last transitioned
func (c *Controller) LastChange() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastChange
}

// transitionTo commits a transition (write lock held)
//
// Entering Critical/Emergency disables every non-essential module;
// returning to Normal/HighLoad re-enables them.
func (c *Controller) transitionTo(to Mode) {
	c.current = to
	c.pending = to
	c.pendingStreak = 0
	c.lastChange = c.nowFunc()

	degraded := to.IsDegraded()
	for _, s := range c.modules {
		if s.essential {
			continue
		}
		s.setEnabled(!degraded)
	}
}
