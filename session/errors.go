package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing 缺少必要输入，在调用外部服务之前就被拒绝
	ErrInputMissing = errors.New("input missing")
	// ErrNoImage 还没有加载图片
	ErrNoImage = fmt.Errorf("%w: no image loaded", ErrInputMissing)
	// ErrEncoding 合成或编码失败
	ErrEncoding = errors.New("could not prepare image")
	// ErrBusy 已有一个编辑请求在处理中
	ErrBusy = errors.New("an edit is already in progress")
)

// ServiceError 外部编辑服务失败，Error() 原样返回服务端消息
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
