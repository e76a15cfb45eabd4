package api

import (
	"errors"
	"fmt"
)

// Kind 请求失败的类型
type Kind string

const (
	KindTransport Kind = "transport" // 网络或连接失败
	KindStatus    Kind = "status"    // HTTP 状态码 >= 400
	KindDecode    Kind = "decode"    // 响应体不是合法 JSON
)

// ErrEmptyResult 响应为空或无法解析为所需结构
var ErrEmptyResult = errors.New("empty result")

// Error 表示一次代理请求的失败
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("请求 %q 失败: 状态码 %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("请求 %q 失败 (%s): %v", e.Endpoint, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf 返回错误的类型，非 *Error 返回空字符串
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
