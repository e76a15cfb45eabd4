package types

import "time"

// Notification 表示一条通知记录（最近通知列表中的条目）
type Notification struct {
	ID      string `json:"id"`      // 唯一标识符
	Title   string `json:"title"`   // 标题
	Content string `json:"content"` // 内容摘要
	Link    string `json:"link"`    // 跳转链接
	Source  string `json:"source"`  // 来源
	Time    int64  `json:"time"`    // 时间戳
}

// Toast 表示一条短暂显示的提示消息
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Timeout   time.Duration `json:"timeout"`
	CreatedAt time.Time     `json:"created_at"`
}
