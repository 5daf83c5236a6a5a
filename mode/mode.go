// Package mode provides the system mode state machine
//
// 设计理念：
//   - 单一事实来源：TriggerEvaluator、OperationCoordinator、IntervalCalculator
//     都只读这里的模式
//   - 滞后（hysteresis）：升级需要连续 K 个样本，降级需要连续 M 个样本
//     （M ≥ K，偏向谨慎），避免模式抖动
//   - 进入 Critical/Emergency 时自动停用非核心模块，恢复时重新启用
package mode

import "github.com/talentmesh/go-talentmesh-core/loadmon"

// Mode 系统模式
type Mode int

const (
	// ModeNormal 正常
	ModeNormal Mode = iota

	// ModeHighLoad 高负载（调度间隔拉长）
	ModeHighLoad

	// ModeCritical 临界（非核心模块停用，性能告警被拒绝）
	ModeCritical

	// ModeEmergency 紧急（仅核心模块可调度）
	ModeEmergency
)

// String 返回模式名称
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeHighLoad:
		return "HighLoad"
	case ModeCritical:
		return "Critical"
	case ModeEmergency:
		return "Emergency"
	default:
		return "Unknown"
	}
}

// Severity 严重度排序值（越大越严重）
func (m Mode) Severity() int {
	return int(m)
}

// IsDegraded 是否处于 Critical 及以上
func (m Mode) IsDegraded() bool {
	return m >= ModeCritical
}

// FromLevel 负载级别到系统模式的映射
func FromLevel(l loadmon.Level) Mode {
	switch l {
	case loadmon.LevelHighLoad:
		return ModeHighLoad
	case loadmon.LevelCritical:
		return ModeCritical
	case loadmon.LevelEmergency:
		return ModeEmergency
	default:
		return ModeNormal
	}
}
