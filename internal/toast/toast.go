// Package toast 显示短暂的提示消息，并在超时后自动移除。
//
// 提示消息显示在 Container 上，Container 由调用方显式传入（网页 DOM、
// Wails 前端、系统托盘或系统通知）。每条提示都有独立的移除定时器。
package toast

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"jroconnect/internal/logger"
	"jroconnect/pkg/types"

	"github.com/google/uuid"
)

// DefaultTimeout 未指定时长时的默认显示时长
const DefaultTimeout = 3000 * time.Millisecond

// ClassName 提示元素使用的样式类名
const ClassName = "toast"

// ErrContainerNotFound 显示容器不存在
var ErrContainerNotFound = errors.New("toast container not found")

// Container 提示消息的显示容器
type Container interface {
	// Append 将提示元素添加到容器中
	Append(t *types.Toast) error
	// Remove 移除指定提示元素，元素不存在时不做任何事
	Remove(t *types.Toast)
}

// Display 负责创建提示并调度移除
type Display struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	pending int
	now     func() time.Time
}

// NewDisplay 创建新的 Display
func NewDisplay() *Display {
	return &Display{now: time.Now}
}

var defaultDisplay = NewDisplay()

// Show 使用默认时长显示提示
func Show(c Container, message string) (*types.Toast, error) {
	return defaultDisplay.ShowFor(c, message, DefaultTimeout)
}

// ShowFor 显示提示，timeout 后自动移除
func ShowFor(c Container, message string, timeout time.Duration) (*types.Toast, error) {
	return defaultDisplay.ShowFor(c, message, timeout)
}

// Show 使用默认时长显示提示
func (d *Display) Show(c Container, message string) (*types.Toast, error) {
	return d.ShowFor(c, message, DefaultTimeout)
}

// ShowFor 在容器上添加一条提示，并在 timeout 后移除这一条提示。
// 负数时长按 0 处理。
func (d *Display) ShowFor(c Container, message string, timeout time.Duration) (*types.Toast, error) {
	if c == nil {
		return nil, ErrContainerNotFound
	}
	if timeout < 0 {
		timeout = 0
	}

	t := &types.Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Timeout:   timeout,
		CreatedAt: d.now(),
	}

	if err := c.Append(t); err != nil {
		return nil, fmt.Errorf("显示提示失败: %w", err)
	}

	d.mu.Lock()
	d.pending++
	d.mu.Unlock()
	d.wg.Add(1)

	time.AfterFunc(timeout, func() {
		defer d.wg.Done()
		c.Remove(t)

		d.mu.Lock()
		d.pending--
		d.mu.Unlock()
		logger.Debugf("提示已移除: %s", t.ID)
	})

	logger.Debugf("显示提示: %s (%v)", t.ID, timeout)
	return t, nil
}

// Pending 返回尚未移除的提示数量
func (d *Display) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Wait 阻塞直到所有已调度的移除都已执行
func (d *Display) Wait() {
	d.wg.Wait()
}

// Timeout 将毫秒数转换为显示时长，负数表示未指定，使用 fallback
func Timeout(ms int, fallback time.Duration) time.Duration {
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
