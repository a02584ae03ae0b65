package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagAttributesOmitSecrets(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("api-key", "", "")
	flags.String("webhook-url", "", "")
	flags.String("github-token", "", "")
	flags.String("Password", "", "")
	flags.String("unset", "", "")
	require.NoError(t, flags.Parse([]string{
		"--output", "STATS.md",
		"--api-key", "sk-123",
		"--webhook-url", "https://discord.com/api/webhooks/1/abc",
		"--github-token", "ghp_456",
		"--Password", "hunter2",
	}))

	attrs := flagAttributes(flags)
	require.Len(t, attrs, 1)
	assert.Equal(t, "flag.output", string(attrs[0].Key))
	assert.Equal(t, "STATS.md", attrs[0].Value.AsString())
}

func TestSensitiveFlag(t *testing.T) {
	tests := map[string]bool{
		"token":         true,
		"key":           true,
		"client-secret": true,
		"auth-header":   true,
		"output":        false,
		"limit":         false,
		"branch":        false,
	}
	for name, want := range tests {
		assert.Equal(t, want, sensitiveFlag(name), name)
	}
}
