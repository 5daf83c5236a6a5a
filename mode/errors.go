package mode

import "errors"

var (
	// ErrUnknownModule 模块未注册（配置/编程错误，注册期即应暴露）
	ErrUnknownModule = errors.New("unknown module")

	// ErrModuleExists 模块重复注册
	ErrModuleExists = errors.New("module already registered")
)
