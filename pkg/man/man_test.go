package man

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManCmd(t *testing.T) {
	root := &cobra.Command{Use: "spotifyclone", Short: "Terminal Spotify client"}
	root.AddCommand(&cobra.Command{Use: "search [query]", Short: "Search the catalog", Run: func(*cobra.Command, []string) {}})
	manCmd := NewManCmd()
	root.AddCommand(manCmd)

	assert.True(t, manCmd.Hidden)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"man"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, ".TH")
	assert.Contains(t, strings.ToLower(out), "spotifyclone")
}
