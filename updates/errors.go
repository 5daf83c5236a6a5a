package updates

import "errors"

var (
	// ErrCallbackExists 回调重复注册
	ErrCallbackExists = errors.New("update callback already registered for key")

	// ErrDispatcherClosed 分发器已停止
	ErrDispatcherClosed = errors.New("dispatcher is closed")

	// ErrInvalidTrigger 未识别的触发类型
	ErrInvalidTrigger = errors.New("invalid trigger kind")
)
