package tui

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLoadMissingFile(t *testing.T) {
	h, err := LoadHistory(afero.NewMemMapFs(), "/home/u/.polo_history", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.Recent(10))
}

func TestHistoryRoundTripAndCap(t *testing.T) {
	fs := afero.NewMemMapFs()
	h, err := LoadHistory(fs, "/home/u/.polo_history", 3)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		h.Add(fmt.Sprintf("cmd %d", i))
	}
	h.Add("   ")
	assert.Equal(t, []string{"cmd 3", "cmd 4", "cmd 5"}, h.Lines())
	require.NoError(t, h.Save())

	data, err := afero.ReadFile(fs, "/home/u/.polo_history")
	require.NoError(t, err)
	assert.Equal(t, "cmd 3\ncmd 4\ncmd 5\n", string(data))

	again, err := LoadHistory(fs, "/home/u/.polo_history", 3)
	require.NoError(t, err)
	assert.Equal(t, h.Lines(), again.Lines())
}

func TestHistoryRecentIsNumbered(t *testing.T) {
	h, _ := LoadHistory(afero.NewMemMapFs(), "", 10)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	assert.Equal(t, []HistoryEntry{{Index: 2, Line: "b"}, {Index: 3, Line: "c"}}, h.Recent(2))
	assert.Len(t, h.Recent(50), 3)
	assert.NoError(t, h.Save())
}
