package notifier

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jroconnect/internal/logger"
	display "jroconnect/internal/toast"
	"jroconnect/pkg/types"

	"github.com/go-toast/toast"
)

const appID = "JusticeRollOn Connect"

// longToastAfter 显示时长超过该值时使用系统的长通知
const longToastAfter = 7 * time.Second

// Pusher 推送系统通知
type Pusher func(n toast.Notification) error

// SystemContainer 以 Windows 系统通知的形式显示提示。
// 通知由系统负责消失，Remove 只清理本地记录。
type SystemContainer struct {
	mu       sync.Mutex
	shown    map[string]bool
	iconPath string
	link     string
	push     Pusher
}

// NewSystemContainer 创建系统通知容器，icon 为托盘图标数据，link 为点击“打开”时访问的地址
func NewSystemContainer(icon []byte, link string) *SystemContainer {
	c := NewSystemContainerWithPusher(link, func(n toast.Notification) error {
		return n.Push()
	})
	c.initIcon(icon)
	return c
}

// NewSystemContainerWithPusher 使用自定义 Pusher 创建系统通知容器
func NewSystemContainerWithPusher(link string, push Pusher) *SystemContainer {
	return &SystemContainer{
		shown: make(map[string]bool),
		link:  link,
		push:  push,
	}
}

// initIcon 把图标写入临时目录，作为通知的 AppID 使用
func (c *SystemContainer) initIcon(icon []byte) {
	if len(icon) == 0 {
		logger.Warn("通知图标数据为空，将使用默认图标")
		return
	}

	iconPath := filepath.Join(os.TempDir(), "jroconnect_icon.ico")
	if _, err := os.Stat(iconPath); err != nil {
		if err := os.WriteFile(iconPath, icon, 0644); err != nil {
			logger.Warnf("写入通知图标文件失败: %v，将使用默认图标", err)
			return
		}
	}

	if abs, err := filepath.Abs(iconPath); err == nil {
		c.iconPath = abs
		logger.Debugf("通知图标已初始化: %s", abs)
	}
}

// Append 推送一条系统通知
func (c *SystemContainer) Append(t *types.Toast) error {
	if c == nil || c.push == nil {
		return display.ErrContainerNotFound
	}
	id := appID
	if c.iconPath != "" {
		// Windows 会从 AppID 指向的图标文件中提取标题区域的图标
		id = c.iconPath
	}

	duration := toast.Short
	if t.Timeout > longToastAfter {
		duration = toast.Long
	}

	n := toast.Notification{
		AppID:    id,
		Title:    appID,
		Message:  t.Message,
		Duration: duration,
	}
	if c.link != "" {
		n.ActivationType = "protocol"
		n.Actions = []toast.Action{
			{Type: "protocol", Label: "打开", Arguments: c.link},
		}
	}

	if err := c.push(n); err != nil {
		return fmt.Errorf("发送系统通知失败: %w", err)
	}

	c.mu.Lock()
	c.shown[t.ID] = true
	c.mu.Unlock()

	logger.Infof("已发送系统通知: %s", t.ID)
	return nil
}

// Remove 清理通知记录
func (c *SystemContainer) Remove(t *types.Toast) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shown, t.ID)
}

// Showing 返回仍在显示时长内的系统通知数量
func (c *SystemContainer) Showing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shown)
}
