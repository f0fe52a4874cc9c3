package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()
	Version, Commit = "v9.9.9", "abc123"

	tests := []struct {
		name string
		args []string
		check func(t *testing.T, out string)
	}{
		{
			name: "plain text",
			args: []string{},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Version: v9.9.9")
				assert.Contains(t, out, "Commit: abc123")
			},
		},
		{
			name: "json",
			args: []string{"--json"},
			check: func(t *testing.T, out string) {
				var info Info
				require.NoError(t, json.Unmarshal([]byte(out), &info))
				assert.Equal(t, "v9.9.9", info.Version)
				assert.Equal(t, "abc123", info.Commit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Command()
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())
			tt.check(t, buf.String())
		})
	}
}
