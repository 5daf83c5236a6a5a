package ratelimit

import "errors"

var (
	// ErrUnknownResource 资源类型未注册（配置错误，启动期应当暴露）
	ErrUnknownResource = errors.New("unknown resource type")

	// ErrClosed 注册表已关闭
	ErrClosed = errors.New("rate limit registry is closed")
)

// ValidationError 配置验证错误
type ValidationError struct {
	Resource string
	Field    string
	Message  string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Resource != "" {
		if e.Err != nil {
			return "ratelimit config validation failed for resource '" + e.Resource + "': " + e.Err.Error()
		}
		return "ratelimit config validation failed for resource '" + e.Resource + "." + e.Field + "': " + e.Message
	}

	if e.Field != "" {
		return "ratelimit config validation failed for field '" + e.Field + "': " + e.Message
	}

	if e.Err != nil {
		return "ratelimit config validation failed: " + e.Err.Error()
	}

	return "ratelimit config validation failed"
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
