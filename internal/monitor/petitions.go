package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jroconnect/internal/logger"
	"jroconnect/pkg/types"
)

// PetitionSource 提供请愿列表
type PetitionSource interface {
	Petitions(ctx context.Context) ([]types.Petition, error)
}

// petitionState 请愿状态信息
type petitionState struct {
	Status         string `json:"status"`
	SupporterCount int    `json:"supporterCount"`
}

// PetitionMonitor 请愿监控器：发现新发布的请愿和支持人数的变化
type PetitionMonitor struct {
	source        PetitionSource
	siteURL       string
	seen          map[int]*petitionState
	mu            sync.Mutex
	stateFilePath string
	baseline      bool // 没有历史状态时，第一次检查只记录状态不产生通知
}

// NewPetitionMonitor 创建新的请愿监控器，stateFilePath 为空时使用默认路径
func NewPetitionMonitor(source PetitionSource, siteURL, stateFilePath string) *PetitionMonitor {
	if stateFilePath == "" {
		stateFilePath = DataFilePath("seen_petitions.json")
	}
	m := &PetitionMonitor{
		source:        source,
		siteURL:       siteURL,
		seen:          make(map[int]*petitionState),
		stateFilePath: stateFilePath,
	}
	m.baseline = !m.loadState()
	return m
}

// SiteURL 根据 API 地址推导网站地址（去掉末尾的 api/）
func SiteURL(apiBaseURL string) string {
	base := strings.TrimSuffix(apiBaseURL, "/")
	base = strings.TrimSuffix(base, "/api")
	return base + "/"
}

// DataFilePath 获取数据文件路径，优先使用当前目录下的 data 目录
func DataFilePath(name string) string {
	dataDir := filepath.Join(".", "data")
	if _, err := os.Stat(dataDir); err == nil {
		return filepath.Join(dataDir, name)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".jroconnect", "data", name)
	}
	return filepath.Join(dataDir, name)
}

// loadState 从文件加载请愿状态，文件存在且可解析时返回 true
func (m *PetitionMonitor) loadState() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.stateFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("读取请愿状态失败: %v，将使用空列表", err)
		}
		return false
	}

	var seen map[int]*petitionState
	if err := json.Unmarshal(data, &seen); err != nil {
		logger.Warnf("解析请愿状态失败: %v，将使用空列表", err)
		return false
	}
	if seen != nil {
		m.seen = seen
	}

	logger.Debugf("已加载 %d 个请愿状态", len(m.seen))
	return true
}

// saveState 保存请愿状态，调用方需持有锁
func (m *PetitionMonitor) saveState() error {
	data, err := json.MarshalIndent(m.seen, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化请愿状态失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.stateFilePath), 0755); err != nil {
		return fmt.Errorf("创建状态文件目录失败: %w", err)
	}
	if err := os.WriteFile(m.stateFilePath, data, 0644); err != nil {
		return fmt.Errorf("写入请愿状态失败: %w", err)
	}
	return nil
}

// FetchUpdates 获取请愿列表，返回新发布的请愿和支持人数增加的请愿
func (m *PetitionMonitor) FetchUpdates(ctx context.Context) ([]*types.Notification, error) {
	petitions, err := m.source.Petitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取请愿列表失败: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().Unix()
	result := make([]*types.Notification, 0)
	newCount, updatedCount := 0, 0

	for _, p := range petitions {
		prev, exists := m.seen[p.ID]
		m.seen[p.ID] = &petitionState{Status: p.Status, SupporterCount: p.SupporterCount}

		if m.baseline || p.Status != types.PetitionPublished {
			continue
		}

		switch {
		case !exists || prev.Status != types.PetitionPublished:
			newCount++
			result = append(result, &types.Notification{
				ID:      fmt.Sprintf("petition_%d_published", p.ID),
				Title:   "新请愿发布: " + p.Title,
				Content: summary(p),
				Link:    m.petitionLink(p.ID),
				Source:  "petitions",
				Time:    now,
			})
		case p.SupporterCount > prev.SupporterCount:
			updatedCount++
			result = append(result, &types.Notification{
				ID:      fmt.Sprintf("petition_%d_supporters_%d", p.ID, p.SupporterCount),
				Title:   fmt.Sprintf("请愿支持人数 %d → %d: %s", prev.SupporterCount, p.SupporterCount, p.Title),
				Content: summary(p),
				Link:    m.petitionLink(p.ID),
				Source:  "petitions",
				Time:    now,
			})
		}
	}

	if m.baseline {
		logger.Infof("请愿: 首次检查，记录 %d 个请愿状态", len(petitions))
		m.baseline = false
	}

	if err := m.saveState(); err != nil {
		logger.Errorf("保存请愿状态失败: %v", err)
	}

	logger.Debugf("请愿: 新发布 %d 个，支持人数更新 %d 个", newCount, updatedCount)
	return result, nil
}

func (m *PetitionMonitor) petitionLink(id int) string {
	if m.siteURL == "" {
		return ""
	}
	return fmt.Sprintf("%spetitions/%d/", m.siteURL, id)
}

func summary(p types.Petition) string {
	content := p.Category
	if p.Description != "" {
		content = truncateString(p.Description, 100)
	}
	return content
}

// truncateString 按字符截断字符串
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
