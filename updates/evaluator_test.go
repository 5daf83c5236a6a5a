package updates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentmesh/go-talentmesh-core/loadmon"
	"github.com/talentmesh/go-talentmesh-core/mode"
)

// evalFixture 评估器测试夹具：可控时钟 + 预注册模块
type evalFixture struct {
	evaluator *Evaluator
	cache     *Cache
	modeCtrl  *mode.Controller
	now       time.Time
}

func newEvalFixture(t *testing.T) *evalFixture {
	t.Helper()

	modeCfg := mode.DefaultConfig()
	modeCfg.Modules = map[string]mode.ModuleConfig{
		"campaigns": {Essential: false},
		"payroll":   {Essential: true},
	}
	modeCtrl, err := mode.NewController(modeCfg)
	require.NoError(t, err)

	f := &evalFixture{
		cache:    NewCache(),
		modeCtrl: modeCtrl,
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	intervals := NewIntervalCalculator(cfg, modeCtrl)
	f.evaluator = NewEvaluator(cfg, f.cache, modeCtrl, intervals,
		WithEvaluatorNowFunc(func() time.Time { return f.now }))

	return f
}

// enterMode 用连续样本把控制器推到目标模式
func (f *evalFixture) enterMode(target loadmon.Level) {
	for i := 0; i < 5; i++ {
		f.modeCtrl.OnClassification(loadmon.Classification{Level: target})
	}
}

func (f *evalFixture) request(trigger Trigger, payload interface{}) *Request {
	return &Request{
		ModuleID:    "campaigns",
		UpdateType:  "metrics",
		Trigger:     trigger,
		Payload:     payload,
		Priority:    PriorityNormal,
		RequestedAt: f.now,
	}
}

func TestEvaluator_UserRequestAlwaysAdmitted(t *testing.T) {
	f := newEvalFixture(t)

	// 刚刚分发过也无妨：用户请求绕过间隔与冷却
	f.cache.Put(Key{"campaigns", "metrics"}, 100.0, f.now)

	ev, err := f.evaluator.Evaluate(f.request(TriggerUserRequest, nil))
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_DataChangeSignificance(t *testing.T) {
	f := newEvalFixture(t)
	key := Key{"campaigns", "metrics"}

	// 首次分发：无缓存，直接放行
	ev, err := f.evaluator.Evaluate(f.request(TriggerDataChange, 100.0))
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, ev.Decision)

	f.cache.Put(key, 100.0, f.now)

	// 9% 变化 < 10% 阈值：拒绝
	ev, err = f.evaluator.Evaluate(f.request(TriggerDataChange, 109.0))
	require.NoError(t, err)
	assert.Equal(t, DecisionRejected, ev.Decision)

	// 10% 变化 = 阈值：放行
	ev, err = f.evaluator.Evaluate(f.request(TriggerDataChange, 110.0))
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_DataChangeNonNumericPayload(t *testing.T) {
	f := newEvalFixture(t)
	key := Key{"campaigns", "metrics"}

	f.cache.Put(key, "kanban-v1", f.now)

	// 非数值载荷：哈希不变视为无变化，改变视为 100% 变化
	ev, _ := f.evaluator.Evaluate(f.request(TriggerDataChange, "kanban-v1"))
	assert.Equal(t, DecisionRejected, ev.Decision)

	ev, _ = f.evaluator.Evaluate(f.request(TriggerDataChange, "kanban-v2"))
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_SystemEventDefer(t *testing.T) {
	f := newEvalFixture(t)
	key := Key{"campaigns", "metrics"}

	f.cache.Put(key, nil, f.now)

	// 60 秒最小间隔之内：延迟（不是拒绝）
	f.now = f.now.Add(30 * time.Second)
	ev, err := f.evaluator.Evaluate(f.request(TriggerSystemEvent, nil))
	require.NoError(t, err)
	assert.Equal(t, DecisionDeferred, ev.Decision)

	f.now = f.now.Add(31 * time.Second)
	ev, _ = f.evaluator.Evaluate(f.request(TriggerSystemEvent, nil))
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_PerformanceAlertModeGate(t *testing.T) {
	f := newEvalFixture(t)

	ev, _ := f.evaluator.Evaluate(f.request(TriggerPerformanceAlert, nil))
	assert.Equal(t, DecisionAdmitted, ev.Decision)

	// Critical 之下性能告警直接拒绝（payroll 是核心模块，保持启用）
	f.enterMode(loadmon.LevelCritical)
	req := f.request(TriggerPerformanceAlert, nil)
	req.ModuleID = "payroll"
	ev, _ = f.evaluator.Evaluate(req)
	assert.Equal(t, DecisionRejected, ev.Decision)
}

// 规格场景：cooldown=300s，两次 MLInsight 相隔60s → Admit 后 Reject；
// 距首次 310s 的第三次请求 → Admit
func TestEvaluator_MLInsightCooldown(t *testing.T) {
	f := newEvalFixture(t)
	key := Key{"campaigns", "metrics"}

	ev, err := f.evaluator.Evaluate(f.request(TriggerMLInsight, nil))
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, ev.Decision)
	f.cache.Put(key, nil, f.now)

	f.now = f.now.Add(60 * time.Second)
	ev, _ = f.evaluator.Evaluate(f.request(TriggerMLInsight, nil))
	assert.Equal(t, DecisionRejected, ev.Decision)

	f.now = f.now.Add(250 * time.Second) // 距首次 310s
	ev, _ = f.evaluator.Evaluate(f.request(TriggerMLInsight, nil))
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_TimeBasedDeferThenAdmit(t *testing.T) {
	f := newEvalFixture(t)
	key := Key{"campaigns", "metrics"}

	f.cache.Put(key, nil, f.now)

	// 默认基准间隔 30s、Normal 模式乘数 1.0
	f.now = f.now.Add(10 * time.Second)
	ev, err := f.evaluator.Evaluate(f.request(TriggerTimeBased, nil))
	require.NoError(t, err)
	assert.Equal(t, DecisionDeferred, ev.Decision, "未到期应当延迟而不是拒绝")

	f.now = f.now.Add(25 * time.Second)
	ev, _ = f.evaluator.Evaluate(f.request(TriggerTimeBased, nil))
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_DisabledModuleRejectsEverything(t *testing.T) {
	f := newEvalFixture(t)
	f.enterMode(loadmon.LevelEmergency)

	// Emergency 下非核心模块对所有触发类型一律拒绝
	triggers := []Trigger{
		TriggerUserRequest, TriggerDataChange, TriggerSystemEvent,
		TriggerPerformanceAlert, TriggerMLInsight, TriggerTimeBased,
	}
	for _, trigger := range triggers {
		ev, err := f.evaluator.Evaluate(f.request(trigger, 1.0))
		require.NoError(t, err)
		assert.Equal(t, DecisionRejected, ev.Decision, "trigger=%s", trigger)
	}

	// 核心模块不受停用影响
	req := f.request(TriggerUserRequest, nil)
	req.ModuleID = "payroll"
	ev, err := f.evaluator.Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, ev.Decision)
}

func TestEvaluator_UnknownModule(t *testing.T) {
	f := newEvalFixture(t)

	req := f.request(TriggerUserRequest, nil)
	req.ModuleID = "ghosts"
	_, err := f.evaluator.Evaluate(req)
	assert.ErrorIs(t, err, mode.ErrUnknownModule)
}

func TestEvaluator_InvalidTrigger(t *testing.T) {
	f := newEvalFixture(t)

	req := f.request(Trigger("telepathy"), nil)
	_, err := f.evaluator.Evaluate(req)
	assert.ErrorIs(t, err, ErrInvalidTrigger)
}

func TestIntervalCalculator_ModeMultipliers(t *testing.T) {
	f := newEvalFixture(t)
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	cfg.BaseIntervals = map[string]map[string]time.Duration{
		"campaigns": {"metrics": 20 * time.Second},
	}
	ic := NewIntervalCalculator(cfg, f.modeCtrl)

	d, ok := ic.Effective("campaigns", "metrics")
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, d)

	f.enterMode(loadmon.LevelHighLoad)
	d, _ = ic.Effective("campaigns", "metrics")
	assert.Equal(t, 30*time.Second, d)

	f.enterMode(loadmon.LevelCritical)
	d, _ = ic.Effective("campaigns", "metrics")
	assert.Equal(t, 60*time.Second, d)

	// Emergency：非核心模块调度暂停，核心模块退回 Critical 乘数
	f.enterMode(loadmon.LevelEmergency)
	_, ok = ic.Effective("campaigns", "metrics")
	assert.False(t, ok)

	d, ok = ic.Effective("payroll", "run")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, d) // 默认基准 30s × 3.0
}
