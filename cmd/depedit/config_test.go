// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("outdir", "", "")
	fs.String("infix", ".depedit", "")
	return fs
}

func TestLoadSettings_NoFileUsesFlagDefaults(t *testing.T) {
	fs := newTestFlags()
	require.NoError(t, fs.Parse(nil))

	k, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml"), fs)
	require.NoError(t, err)
	assert.Equal(t, ".depedit", k.String("infix"))
}

func TestLoadSettings_FileValueUsedWhenFlagNotSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "depedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outdir: /data/out\n"), 0o600))

	fs := newTestFlags()
	require.NoError(t, fs.Parse(nil))

	k, err := loadSettings(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "/data/out", k.String("outdir"))
}

func TestLoadSettings_FlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "depedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outdir: /data/out\n"), 0o600))

	fs := newTestFlags()
	require.NoError(t, fs.Parse([]string{"--outdir=/cli/out"}))

	k, err := loadSettings(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "/cli/out", k.String("outdir"))
}
