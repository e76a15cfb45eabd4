package toast

import (
	"errors"
	"sync"

	"jroconnect/internal/logger"
	"jroconnect/pkg/types"
)

// MultiContainer 同时在多个容器上显示提示。
// 只要有一个容器添加成功就视为成功，失败的容器不会收到 Remove。
type MultiContainer struct {
	mu         sync.Mutex
	containers []Container
	appended   map[string][]Container
}

// NewMultiContainer 创建 MultiContainer，忽略 nil 容器
func NewMultiContainer(containers ...Container) *MultiContainer {
	m := &MultiContainer{appended: make(map[string][]Container)}
	for _, c := range containers {
		if c != nil {
			m.containers = append(m.containers, c)
		}
	}
	return m
}

// Append 添加到所有容器
func (m *MultiContainer) Append(t *types.Toast) error {
	if len(m.containers) == 0 {
		return ErrContainerNotFound
	}

	var (
		ok   []Container
		errs []error
	)
	for _, c := range m.containers {
		if err := c.Append(t); err != nil {
			logger.Warnf("提示容器添加失败: %v", err)
			errs = append(errs, err)
			continue
		}
		ok = append(ok, c)
	}
	if len(ok) == 0 {
		return errors.Join(errs...)
	}

	m.mu.Lock()
	m.appended[t.ID] = ok
	m.mu.Unlock()
	return nil
}

// Remove 从添加成功的容器中移除
func (m *MultiContainer) Remove(t *types.Toast) {
	m.mu.Lock()
	cs := m.appended[t.ID]
	delete(m.appended, t.ID)
	m.mu.Unlock()

	for _, c := range cs {
		c.Remove(t)
	}
}
