//go:build !windows

package singleinstance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestLock_SecondHolderRejected(t *testing.T) {
	LockPath = filepath.Join(t.TempDir(), "jroconnect.lock")

	locked, err := Lock()
	require.NoError(t, err)
	require.True(t, locked)
	defer Unlock()

	// 另一个文件描述符模拟第二个进程
	f, err := os.OpenFile(LockPath, os.O_RDWR, 0600)
	require.NoError(t, err)
	defer f.Close()
	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	assert.ErrorIs(t, err, unix.EWOULDBLOCK)
}

func TestUnlock_AllowsRelock(t *testing.T) {
	LockPath = filepath.Join(t.TempDir(), "jroconnect.lock")

	locked, err := Lock()
	require.NoError(t, err)
	require.True(t, locked)
	Unlock()
	Unlock()

	locked, err = Lock()
	require.NoError(t, err)
	assert.True(t, locked)
	Unlock()
}
