package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]TableColumn{{Title: "NAME"}, {Title: "LINES"}, {Title: "DESCRIPTION", Width: 12}},
		[][]string{
			{"flash", "2", "Flash a meter firmware"},
			{"login", "1", ""},
		},
	)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, []string{
		"NAME   LINES  DESCRIPTION",
		"flash  2      Flash a m...",
		"login  1",
	}, lines)
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable([]TableColumn{{Title: "NAME"}}, nil))
}

func TestRenderTable_MultilineCellShowsFirstLine(t *testing.T) {
	out := RenderTable([]TableColumn{{Title: "T"}}, [][]string{{"echo a\necho b"}})
	assert.Contains(t, out, "echo a ...")
	assert.NotContains(t, out, "echo b")
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{Version: "1.2.3", Tagline: "command queue runner", Details: []string{"store: /tmp/x"}})
	assert.True(t, strings.HasPrefix(out, "cq 1.2.3\ncommand queue runner\nstore: /tmp/x\n"))
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}
