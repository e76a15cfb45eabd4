package tray

import (
	"sync"

	"jroconnect/internal/toast"
	"jroconnect/pkg/types"
)

// maxTooltipRunes Windows 托盘提示最多显示 127 个字符
const maxTooltipRunes = 127

// Container 在托盘提示中显示最新的一条提示消息，提示全部移除后恢复默认文字
type Container struct {
	mu         sync.Mutex
	base       string
	live       []*types.Toast
	setTooltip func(string)
}

// NewContainer 创建托盘提示容器
func NewContainer() *Container {
	return NewContainerWithSetter(BaseTooltip(), SetTooltip)
}

// NewContainerWithSetter 使用自定义的设置函数创建托盘提示容器
func NewContainerWithSetter(base string, setTooltip func(string)) *Container {
	return &Container{base: base, setTooltip: setTooltip}
}

// Append 显示提示
func (c *Container) Append(t *types.Toast) error {
	if c == nil {
		return toast.ErrContainerNotFound
	}
	c.mu.Lock()
	c.live = append(c.live, t)
	tip := c.tooltipLocked()
	c.mu.Unlock()

	if c.setTooltip != nil {
		c.setTooltip(tip)
	}
	return nil
}

// Remove 移除提示并刷新托盘文字
func (c *Container) Remove(t *types.Toast) {
	if c == nil {
		return
	}
	c.mu.Lock()
	idx := -1
	for i, lt := range c.live {
		if lt.ID == t.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.live = append(c.live[:idx], c.live[idx+1:]...)
	tip := c.tooltipLocked()
	c.mu.Unlock()

	if c.setTooltip != nil {
		c.setTooltip(tip)
	}
}

// Tooltip 返回当前托盘文字
func (c *Container) Tooltip() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltipLocked()
}

func (c *Container) tooltipLocked() string {
	if len(c.live) == 0 {
		return c.base
	}
	msg := []rune(c.live[len(c.live)-1].Message)
	if len(msg) > maxTooltipRunes {
		msg = append(msg[:maxTooltipRunes-1], '…')
	}
	return string(msg)
}
