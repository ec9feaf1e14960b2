package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".d2o")

	path, err := Write(dir, "git", "fish", "complete -c git\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "git.fish"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "complete -c git\n", string(data))

	path, err = Write(dir, "git", "fish", "replaced\n")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", string(data))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "git-log.json", FileName("git-log", "json"))
	assert.Equal(t, "usr_bin_ls.txt", FileName("usr/bin/ls", "txt"))
	assert.Equal(t, "etc_passwd.zsh", FileName("../etc/passwd", "zsh"))
	assert.Equal(t, "command.nu", FileName("", "nu"))
}
