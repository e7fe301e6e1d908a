package deterministicmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	m := New[string, string]()
	m.Set("a", "b")
	require.Equal(t, 1, m.Len())
	m.Delete("a")
	require.Equal(t, 0, m.Len())
	m.Delete("a") // noop
	require.Equal(t, 0, m.Len())
}

func TestCloneIndependence(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	c := m.Clone()
	c.Set("a", 99)
	c.Set("c", 3)

	got, _ := m.Get("a")
	require.Equal(t, 1, got)
	require.Equal(t, 2, m.Len())
	require.Equal(t, 3, c.Len())
	require.Equal(t, []string{"a", "b"}, m.Keys())
	require.Equal(t, []string{"a", "b", "c"}, c.Keys())
}
