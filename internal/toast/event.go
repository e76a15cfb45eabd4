package toast

import (
	"context"

	"jroconnect/pkg/types"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 前端监听的事件名
const (
	EventAppend = "toast:append"
	EventRemove = "toast:remove"
)

// Emitter 向前端发送事件
type Emitter func(ctx context.Context, eventName string, optionalData ...interface{})

// EventContainer 通过 Wails 事件把提示交给前端页面显示
type EventContainer struct {
	ctx  func() context.Context
	emit Emitter
}

// NewEventContainer 创建 EventContainer，ctx 返回当前窗口的 context（窗口未就绪时为 nil）
func NewEventContainer(ctx func() context.Context) *EventContainer {
	return NewEventContainerWithEmitter(ctx, runtime.EventsEmit)
}

// NewEventContainerWithEmitter 使用自定义 Emitter 创建 EventContainer
func NewEventContainerWithEmitter(ctx func() context.Context, emit Emitter) *EventContainer {
	return &EventContainer{ctx: ctx, emit: emit}
}

// Append 发送 toast:append 事件
func (c *EventContainer) Append(t *types.Toast) error {
	ctx := c.context()
	if ctx == nil {
		return ErrContainerNotFound
	}
	c.emit(ctx, EventAppend, map[string]interface{}{
		"id":         t.ID,
		"class":      ClassName,
		"message":    t.Message,
		"timeout_ms": t.Timeout.Milliseconds(),
	})
	return nil
}

// Remove 发送 toast:remove 事件
func (c *EventContainer) Remove(t *types.Toast) {
	ctx := c.context()
	if ctx == nil {
		return
	}
	c.emit(ctx, EventRemove, t.ID)
}

// context 返回窗口 context，容器或窗口不可用时为 nil
func (c *EventContainer) context() context.Context {
	if c == nil || c.ctx == nil || c.emit == nil {
		return nil
	}
	return c.ctx()
}
