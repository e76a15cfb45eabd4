//go:build !windows

package singleinstance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jroconnect/internal/logger"

	"golang.org/x/sys/unix"
)

var lockFile *os.File

// LockPath 锁文件路径
var LockPath = filepath.Join(os.TempDir(), "jroconnect.lock")

// Lock 尝试获取单实例锁，已有实例在运行时返回 false
func Lock() (bool, error) {
	f, err := os.OpenFile(LockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return false, fmt.Errorf("打开锁文件失败: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			logger.Info("检测到已有实例在运行，退出当前实例")
			return false, nil
		}
		return false, fmt.Errorf("获取文件锁失败: %w", err)
	}

	lockFile = f
	logger.Info("单实例锁已获取")
	return true, nil
}

// Unlock 释放单实例锁
func Unlock() {
	if lockFile != nil {
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
		lockFile = nil
		logger.Info("单实例锁已释放")
	}
}
