// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"code.hybscloud.com/ltq"
	"code.hybscloud.com/ltq/internal/stress"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesApply(t *testing.T) {
	var o overrides
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd, true)
	require.NoError(t, cmd.ParseFlags([]string{"--duration", "250ms", "--consumers", "6", "--mode", "transfer"}))

	cfg := stress.DefaultConfig()
	o.apply(cmd, cfg)

	assert.Equal(t, 250, cfg.DurationMs)
	assert.Equal(t, 6, cfg.Consumers)
	assert.Equal(t, stress.ModeTransfer, cfg.Mode)
	assert.Equal(t, stress.DefaultConfig().Producers, cfg.Producers, "unset flags keep config values")
}

func TestWhiteboxHasNoModeFlag(t *testing.T) {
	assert.Nil(t, cmdWhitebox().Flags().Lookup("mode"))
}

func TestRootRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("mode: buffered\nunknown_key: 1\n"), 0o644))

	root := quiet(cmdRoot())
	root.SetArgs([]string{"run", path})
	assert.Error(t, root.Execute())

	root = quiet(cmdRoot())
	root.SetArgs([]string{"run", "--mode", "bogus"})
	assert.Error(t, root.Execute())
}

func TestRootWhitebox(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	root := quiet(cmdRoot())
	root.SetArgs([]string{"whitebox", "--duration", "50ms", "--log-level", "ERROR"})
	assert.NoError(t, root.Execute())
}

func quiet(cmd *cobra.Command) *cobra.Command {
	cmd.SetOut(&nopWriter{})
	cmd.SetErr(&nopWriter{})
	return cmd
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
