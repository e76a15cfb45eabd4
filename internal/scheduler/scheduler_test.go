package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jroconnect/internal/toast"
	"jroconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	batches [][]*types.Notification
	calls   int
}

func (f *fakeSource) FetchUpdates(ctx context.Context) ([]*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memContainer struct {
	mu       sync.Mutex
	messages map[string]string
	total    int
}

func newMemContainer() *memContainer {
	return &memContainer{messages: make(map[string]string)}
}

func (m *memContainer) Append(t *types.Toast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[t.ID] = t.Message
	m.total++
	return nil
}

func (m *memContainer) Remove(t *types.Toast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, t.ID)
}

func (m *memContainer) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func notif(id string) *types.Notification {
	return &types.Notification{ID: id, Title: "title " + id, Source: "petitions"}
}

func newTestScheduler(t *testing.T, src *fakeSource, c toast.Container) (*Scheduler, *toast.Display) {
	t.Helper()
	d := toast.NewDisplay()
	s := NewScheduler(Options{
		Source:       src,
		Display:      d,
		Container:    c,
		PollInterval: time.Hour,
		ToastTimeout: 10 * time.Millisecond,
		DataFile:     filepath.Join(t.TempDir(), "notifications.json"),
	})
	return s, d
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	src := &fakeSource{batches: [][]*types.Notification{{notif("a"), notif("b")}}}
	c := newMemContainer()
	s, d := newTestScheduler(t, src, c)

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return len(s.GetRecentNotifications()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return c.Total() == 2 }, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.messages) == 0
	}, time.Second, 5*time.Millisecond)
	d.Wait()
	assert.Equal(t, 0, d.Pending())
}

func TestScheduler_TriggerCheck(t *testing.T) {
	src := &fakeSource{batches: [][]*types.Notification{nil, {notif("c")}}}
	s, _ := newTestScheduler(t, src, newMemContainer())

	s.TriggerCheck() // 未运行时忽略
	assert.Equal(t, 0, src.Calls())

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, 5*time.Millisecond)

	s.TriggerCheck()
	assert.Eventually(t, func() bool { return len(s.GetRecentNotifications()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeSource{}, newMemContainer())
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestAddNotifications_OrderDedupAndLimit(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeSource{}, newMemContainer())

	s.addNotifications([]*types.Notification{notif("1"), notif("2")})
	s.addNotifications([]*types.Notification{notif("3"), notif("1"), notif("3")})

	ids := func() []string {
		var out []string
		for _, n := range s.GetRecentNotifications() {
			out = append(out, n.ID)
		}
		return out
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids())

	batch := make([]*types.Notification, 0, 60)
	for i := 0; i < 60; i++ {
		batch = append(batch, notif(fmt.Sprintf("n%d", i)))
	}
	s.addNotifications(batch)
	got := ids()
	assert.Len(t, got, maxRecent)
	assert.Equal(t, "n0", got[0])
}

func TestNotificationsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "notifications.json")
	s := NewScheduler(Options{Source: &fakeSource{}, DataFile: path})
	s.addNotifications([]*types.Notification{notif("x")})
	assert.FileExists(t, path)

	reloaded := NewScheduler(Options{Source: &fakeSource{}, DataFile: path})
	got := reloaded.GetRecentNotifications()
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
}

func TestLoadNotifications_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	s := NewScheduler(Options{Source: &fakeSource{}, DataFile: path})
	assert.Empty(t, s.GetRecentNotifications())
}

func TestUpdateConfig(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeSource{}, newMemContainer())
	require.NoError(t, s.Start())
	defer s.Stop()

	cfg := &types.Config{PollInterval: 30, Toast: types.ToastConfig{TimeoutMs: 1200}}
	s.UpdateConfig(cfg)

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, 30*time.Second, s.pollInterval)
	assert.Equal(t, 1200*time.Millisecond, s.toastTimeout)
	assert.Equal(t, "@every 30s", s.cronExpr())
	assert.Len(t, s.cron.Entries(), 1)
}
