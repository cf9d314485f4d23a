package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_RegistryIsConsistent(t *testing.T) {
	for name, cmd := range commands() {
		assert.Equal(t, name, cmd.name, "registry key must match command name")
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestParseLoginFlags(t *testing.T) {
	opts, err := parseLoginFlags([]string{"-token", "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", opts.Token)

	opts, err = parseLoginFlags(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.Token)

	_, err = parseLoginFlags([]string{"-bogus"})
	require.Error(t, err)
}

func TestParseProjectCreateFlags(t *testing.T) {
	opts, err := parseProjectCreateFlags([]string{
		"-name", "alpha",
		"-description", "first",
		"-models", "1, 2,3",
		"-api-keys", "3=sk-xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha", opts.Name)
	assert.Equal(t, "first", opts.Description)
	assert.Equal(t, "1, 2,3", opts.Models)
	assert.Equal(t, "3=sk-xyz", opts.APIKeys)
}

func TestParseProjectDeleteFlags(t *testing.T) {
	opts, err := parseProjectDeleteFlags([]string{"-id", "42"})
	require.NoError(t, err)
	assert.Equal(t, 42, opts.ID)
}
