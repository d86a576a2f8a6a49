package gitleaks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitleaks.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
title = "test config"

[[rules]]
id = "test-token"
description = "Test token"
regex = '''tok_[a-z0-9]{16}'''
`), 0o600))

	n, err := ValidateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestValidateConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ValidateConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[[rules]\nid = "), 0o600))
	_, err = ValidateConfig(broken)
	assert.Error(t, err)
}
