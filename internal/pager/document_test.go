package pager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestDocument_MountReplaceUnmount(t *testing.T) {
	d := NewDocument()
	d.Mount("b", "<table>b</table>")
	d.Mount("a", "<table>a</table>")
	assert.Equal(t, []string{"b", "a"}, d.Tables())
	assert.Equal(t, []string{"a", "b"}, d.SortedTables())

	require.NoError(t, d.ReplaceFragment("a", "<table>a2</table>"))
	require.NoError(t, d.ReplaceControls("a", "<ul></ul>"))
	s, ok := d.Slot("a")
	require.True(t, ok)
	assert.Equal(t, Slot{Fragment: "<table>a2</table>", Controls: "<ul></ul>"}, s)

	d.Unmount("a")
	d.Unmount("a")
	assert.Equal(t, []string{"b"}, d.Tables())
	assert.ErrorIs(t, d.ReplaceFragment("a", ""), ErrTargetNotFound)
	assert.ErrorIs(t, d.ReplaceControls("a", ""), ErrTargetNotFound)
}

func TestDocument_RemountResetsControls(t *testing.T) {
	d := NewDocument()
	d.Mount("a", "one")
	require.NoError(t, d.ReplaceControls("a", "<ul></ul>"))
	d.Mount("a", "two")

	s, _ := d.Slot("a")
	assert.Equal(t, Slot{Fragment: "two"}, s)
	assert.Equal(t, []string{"a"}, d.Tables())
}
