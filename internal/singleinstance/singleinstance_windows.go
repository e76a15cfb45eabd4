//go:build windows

package singleinstance

import (
	"errors"
	"fmt"

	"jroconnect/internal/logger"

	"golang.org/x/sys/windows"
)

const mutexName = "JROConnect_SingleInstance_Mutex"

var mutexHandle windows.Handle

// Lock 尝试获取单实例锁，已有实例在运行时返回 false
func Lock() (bool, error) {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return false, fmt.Errorf("创建互斥体名称失败: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if handle != 0 {
				windows.CloseHandle(handle)
			}
			logger.Info("检测到已有实例在运行，退出当前实例")
			return false, nil
		}
		return false, fmt.Errorf("创建互斥体失败: %w", err)
	}

	mutexHandle = handle
	logger.Info("单实例锁已获取")
	return true, nil
}

// Unlock 释放单实例锁
func Unlock() {
	if mutexHandle != 0 {
		windows.CloseHandle(mutexHandle)
		mutexHandle = 0
		logger.Info("单实例锁已释放")
	}
}
