package toast

import (
	"errors"
	"testing"

	"jroconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiContainer_FanOut(t *testing.T) {
	a, b := &recordingContainer{}, &recordingContainer{}
	m := NewMultiContainer(a, nil, b)

	toast := &types.Toast{ID: "1", Message: "hi"}
	require.NoError(t, m.Append(toast))
	m.Remove(toast)

	assert.Len(t, a.appended, 1)
	assert.Len(t, b.appended, 1)
	assert.Equal(t, 1, a.removedCount())
	assert.Equal(t, 1, b.removedCount())
}

func TestMultiContainer_PartialFailure(t *testing.T) {
	good := &recordingContainer{}
	bad := &recordingContainer{appendErr: errors.New("tray unavailable")}
	m := NewMultiContainer(bad, good)

	toast := &types.Toast{ID: "1"}
	require.NoError(t, m.Append(toast))
	m.Remove(toast)

	assert.Equal(t, 1, good.removedCount())
	assert.Equal(t, 0, bad.removedCount())
}

func TestMultiContainer_AllFail(t *testing.T) {
	m := NewMultiContainer(&recordingContainer{appendErr: ErrContainerNotFound})
	assert.ErrorIs(t, m.Append(&types.Toast{ID: "1"}), ErrContainerNotFound)

	assert.ErrorIs(t, NewMultiContainer().Append(&types.Toast{ID: "1"}), ErrContainerNotFound)
}
