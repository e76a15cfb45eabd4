package toast

import (
	"sync"
	"time"

	"jroconnect/pkg/types"
)

// Service 绑定显示容器和默认时长，供应用层和 HTTP 接口使用
type Service struct {
	display *Display

	mu             sync.RWMutex
	container      Container
	defaultTimeout time.Duration
}

// NewService 创建提示服务
func NewService(display *Display, container Container, defaultTimeout time.Duration) *Service {
	if display == nil {
		display = NewDisplay()
	}
	return &Service{display: display, container: container, defaultTimeout: defaultTimeout}
}

// ShowToast 显示提示，timeoutMs 为负数时使用默认时长
func (s *Service) ShowToast(message string, timeoutMs int) (*types.Toast, error) {
	s.mu.RLock()
	c, def := s.container, s.defaultTimeout
	s.mu.RUnlock()

	return s.display.ShowFor(c, message, Timeout(timeoutMs, def))
}

// SetDefaultTimeout 更新默认时长
func (s *Service) SetDefaultTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultTimeout = d
}

// Display 返回底层 Display
func (s *Service) Display() *Display {
	return s.display
}

// Container 返回当前容器
func (s *Service) Container() Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.container
}
