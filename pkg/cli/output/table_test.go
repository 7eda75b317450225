package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RenderAlignsByRunes(t *testing.T) {
	color.NoColor = true

	table := NewTable([]string{"ID", "NAME"})
	table.AddRow([]string{"1", "Découpe"})
	table.AddRow([]string{"12", "焊接"})

	var buf bytes.Buffer
	table.RenderTo(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME     ", lines[0])
	assert.Equal(t, "--  -------  ", lines[1])
	assert.Equal(t, "1   Découpe  ", lines[2])
	assert.Equal(t, "12  焊接       ", lines[3])
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----------]   0.0%", ProgressBar(0, 10))
	assert.Equal(t, "[#####-----]  50.0%", ProgressBar(50, 10))
	assert.Equal(t, "[##########] 100.0%", ProgressBar(130, 10))
	assert.Equal(t, "[----------]   0.0%", ProgressBar(-5, 10))
}
