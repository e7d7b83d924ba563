package config

import (
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://10.0.0.5:8000", "-d", "/tmp/state.db"},
			expected: &Config{ServerBaseURL: "http://10.0.0.5:8000", DatabasePath: "/tmp/state.db"}},
		{name: "Test2 partial override", args: []string{"cmd", "-d", "custom.db"},
			expected: &Config{DatabasePath: "custom.db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
