package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentmesh/go-talentmesh-core/loadmon"
)

func classification(l loadmon.Level) loadmon.Classification {
	return loadmon.Classification{Level: l, Score: 0.5}
}

func newTestController(t *testing.T, modules map[string]ModuleConfig) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EscalateSamples = 3
	cfg.RecoverSamples = 5
	cfg.Modules = modules
	c, err := NewController(cfg)
	require.NoError(t, err)
	return c
}

func TestController_HysteresisUp(t *testing.T) {
	c := newTestController(t, nil)

	// 单个瞬时尖峰不应该切换模式
	c.OnClassification(classification(loadmon.LevelCritical))
	assert.Equal(t, ModeNormal, c.Current(), "单个样本不应触发切换")

	// 中断连续性：回到 Normal 后重新计数
	c.OnClassification(classification(loadmon.LevelNormal))
	c.OnClassification(classification(loadmon.LevelCritical))
	c.OnClassification(classification(loadmon.LevelCritical))
	assert.Equal(t, ModeNormal, c.Current(), "连续2个样本仍不足K=3")

	c.OnClassification(classification(loadmon.LevelCritical))
	assert.Equal(t, ModeCritical, c.Current(), "连续3个样本应当切换")
}

func TestController_HysteresisDown(t *testing.T) {
	c := newTestController(t, nil)

	for i := 0; i < 3; i++ {
		c.OnClassification(classification(loadmon.LevelEmergency))
	}
	require.Equal(t, ModeEmergency, c.Current())

	// 降级需要 M=5 个连续样本
	for i := 0; i < 4; i++ {
		c.OnClassification(classification(loadmon.LevelNormal))
		assert.Equal(t, ModeEmergency, c.Current(), "第%d个恢复样本不应降级", i+1)
	}
	c.OnClassification(classification(loadmon.LevelNormal))
	assert.Equal(t, ModeNormal, c.Current())
}

func TestController_PendingStreakResets(t *testing.T) {
	c := newTestController(t, nil)

	// 候选模式变化时重新计数
	c.OnClassification(classification(loadmon.LevelCritical))
	c.OnClassification(classification(loadmon.LevelEmergency))
	c.OnClassification(classification(loadmon.LevelEmergency))
	assert.Equal(t, ModeNormal, c.Current())

	c.OnClassification(classification(loadmon.LevelEmergency))
	assert.Equal(t, ModeEmergency, c.Current())
}

func TestController_ModuleGating(t *testing.T) {
	c := newTestController(t, map[string]ModuleConfig{
		"campaigns": {Essential: false},
		"payroll":   {Essential: true},
	})

	enabled, err := c.ModuleEnabled("campaigns")
	require.NoError(t, err)
	assert.True(t, enabled)

	// 进入 Critical：非核心模块停用，核心模块保持启用
	for i := 0; i < 3; i++ {
		c.OnClassification(classification(loadmon.LevelCritical))
	}
	require.Equal(t, ModeCritical, c.Current())

	enabled, _ = c.ModuleEnabled("campaigns")
	assert.False(t, enabled)
	enabled, _ = c.ModuleEnabled("payroll")
	assert.True(t, enabled)

	// 恢复到 HighLoad：重新启用
	for i := 0; i < 5; i++ {
		c.OnClassification(classification(loadmon.LevelHighLoad))
	}
	require.Equal(t, ModeHighLoad, c.Current())

	enabled, _ = c.ModuleEnabled("campaigns")
	assert.True(t, enabled)
}

func TestController_UnknownModule(t *testing.T) {
	c := newTestController(t, nil)

	_, err := c.ModuleEnabled("ghosts")
	assert.ErrorIs(t, err, ErrUnknownModule)

	require.NoError(t, c.RegisterModule("ghosts", false))
	assert.ErrorIs(t, c.RegisterModule("ghosts", false), ErrModuleExists)
}

func TestController_ActiveOps(t *testing.T) {
	c := newTestController(t, map[string]ModuleConfig{
		"campaigns": {},
	})

	c.OpStarted("campaigns")
	c.OpStarted("campaigns")
	assert.Equal(t, int64(2), c.TotalActiveOps())

	c.OpFinished("campaigns")
	c.OpFinished("campaigns")
	c.OpFinished("campaigns") // 多余的 Finish 不应产生负数
	assert.Equal(t, int64(0), c.TotalActiveOps())

	c.RecordError("campaigns")
	snaps := c.ModuleSnapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(1), snaps[0].ErrorCount)
}

func TestController_ChangeListener(t *testing.T) {
	c := newTestController(t, nil)

	var transitions [][2]Mode
	c.Subscribe(func(from, to Mode) {
		transitions = append(transitions, [2]Mode{from, to})
	})

	for i := 0; i < 3; i++ {
		c.OnClassification(classification(loadmon.LevelHighLoad))
	}

	require.Len(t, transitions, 1)
	assert.Equal(t, ModeNormal, transitions[0][0])
	assert.Equal(t, ModeHighLoad, transitions[0][1])
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{EscalateSamples: 5, RecoverSamples: 3}
	assert.Error(t, cfg.Validate(), "M < K 应当报错")

	ok := Config{EscalateSamples: 3, RecoverSamples: 3}
	assert.NoError(t, ok.Validate())
}
