// Package analytics 预测分析协作方的准入网关
//
// 本包不解释分析结果：限流与模式闸门之后，调用原样转发给协作方，
// 输出原样返回给调用者。
package analytics

import "context"

// Collaborator external predictive-analytics subsystem
//
// Implementations live outside this core (HTTP client, in-process engine).
// Execute must honor ctx cancellation for the coordinator timeout to bite.
type Collaborator interface {
	Execute(ctx context.Context, opType string, payload interface{}) (interface{}, error)
}

// CollaboratorFunc adapts a function to Collaborator
type CollaboratorFunc func(ctx context.Context, opType string, payload interface{}) (interface{}, error)

// Execute implements Collaborator
func (f CollaboratorFunc) Execute(ctx context.Context, opType string, payload interface{}) (interface{}, error) {
	return f(ctx, opType, payload)
}

// Status outcome class of one coordinated operation
type Status string

const (
	// StatusOK 协作方正常返回
	StatusOK Status = "ok"
	// StatusRateLimited 被 ml_operations 限流窗口拒绝
	StatusRateLimited Status = "rate_limited"
	// StatusModeRejected 系统处于降级模式且操作非核心
	StatusModeRejected Status = "mode_rejected"
	// StatusTimeout 协作方未在预算内返回
	StatusTimeout Status = "timeout"
	// StatusError 协作方返回错误
	StatusError Status = "error"
)

// Result outcome of CoordinateOperation
//
// Output is the collaborator's return value passed through uninterpreted;
// it is nil unless Status is StatusOK.
type Result struct {
	Status Status      `json:"status"`
	Output interface{} `json:"output,omitempty"`
	Err    error       `json:"-"`
}

// Admitted reports whether the operation reached the collaborator and succeeded
func (r Result) Admitted() bool {
	return r.Status == StatusOK
}
