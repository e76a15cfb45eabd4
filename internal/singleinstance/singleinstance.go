// Package singleinstance 保证同一时间只运行一个桌面实例。
package singleinstance

import (
	"os"

	"jroconnect/internal/logger"
)

// CheckAndExit 检查是否有其他实例在运行，如果有则退出
func CheckAndExit() {
	locked, err := Lock()
	if err != nil {
		logger.Errorf("检查单实例失败: %v", err)
		os.Exit(1)
	}
	if !locked {
		os.Exit(0)
	}
}
