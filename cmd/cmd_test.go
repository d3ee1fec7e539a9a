// File: cmd/cmd_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "webagent", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))

	var found bool
	for _, c := range rootCmd.Commands() {
		if c.Name() == "run" {
			found = true
		}
	}
	assert.True(t, found, "run command should be registered")
}

func TestRunCommandFlags(t *testing.T) {
	t.Parallel()
	runCmd := newRunCmd()

	for _, name := range []string{"url", "max-steps", "headless", "output", "annotate", "export-dataset"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %s", name)
	}

	url := runCmd.Flags().Lookup("url")
	require.NotNil(t, url)
	assert.Equal(t, "u", url.Shorthand)
}
