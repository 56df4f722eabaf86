package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "abc", "****"},
		{"exactly_10", "1234567890", "****"},
		{"long_token", "eyJhbGciOiJIUzI1NiJ9.payload.sig", "eyJh****.sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Host:     "http://localhost:8080",
				Username: "admin",
				Password: "correct-horse-battery",
				Token:    "eyJhbGciOiJIUzI1NiJ9.payload.signature",
			},
		},
	}

	masked := maskConfig(cfg)

	assert.Equal(t, "http://localhost:8080", masked.Profiles["default"].Host)
	assert.Equal(t, "admin", masked.Profiles["default"].Username)
	assert.Equal(t, "default", masked.CurrentProfile)

	assert.Equal(t, "corr****tery", masked.Profiles["default"].Password)
	assert.Contains(t, masked.Profiles["default"].Token, "****")

	// Original config not mutated.
	assert.Equal(t, "correct-horse-battery", cfg.Profiles["default"].Password)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.payload.signature", cfg.Profiles["default"].Token)
}

func TestMaskConfig_EmptyProfiles(t *testing.T) {
	masked := maskConfig(emptyUserConfig())
	assert.Empty(t, masked.Profiles)
}

func TestConfigShow_TableOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Host:     "http://localhost:8080",
				Username: "admin",
				Password: "pw_default_123456",
				Output:   "table",
			},
			"staging": {Host: "https://staging.example.com"},
		},
	}))

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"config", "show", "--output", "table"})
	done := captureStdout(t)
	require.NoError(t, rootCmd.Execute())
	output := done()

	assert.Contains(t, output, "PROFILE")
	assert.Contains(t, output, "ACTIVE")
	assert.Contains(t, output, "HOST")
	assert.Contains(t, output, "http://localhost:8080")
	assert.Contains(t, output, "https://staging.example.com")
	assert.Less(t, strings.Index(output, "default"), strings.Index(output, "staging"), "profiles sorted by name")
	assert.False(t, strings.Contains(output, "pw_default_123456"), "password should be masked in table output")
}

func TestConfigShow_Reveal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {Token: "tok_visible_123456"}},
	}))

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--output", "json", "config", "show", "--reveal"})
	done := captureStdout(t)
	require.NoError(t, rootCmd.Execute())

	var cfg struct {
		Profiles map[string]Profile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(done()), &cfg))
	assert.Equal(t, "tok_visible_123456", cfg.Profiles["default"].Token)
}

func TestConfigSetAndUseProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	set := newRootCmd()
	set.SetArgs([]string{"config", "set-profile", "--name", "staging", "--host", "https://staging.example.com", "--username", "editor", "--project", "/work/site"})
	done := captureStdout(t)
	require.NoError(t, set.Execute())
	assert.Contains(t, done(), `Profile "staging" saved`)

	// A second call only changes the flags it sets.
	update := newRootCmd()
	update.SetArgs([]string{"config", "set-profile", "--name", "staging", "--log-level", "debug"})
	done = captureStdout(t)
	require.NoError(t, update.Execute())
	done()

	use := newRootCmd()
	use.SetArgs([]string{"config", "use-profile", "staging"})
	done = captureStdout(t)
	require.NoError(t, use.Execute())
	done()

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.CurrentProfile)
	assert.Equal(t, Profile{
		Host:       "https://staging.example.com",
		Username:   "editor",
		ProjectDir: "/work/site",
		LogLevel:   "debug",
	}, cfg.Profiles["staging"])
}

func TestConfigSetProfile_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad host", []string{"--host", "ftp://cms"}, "scheme must be http or https"},
		{"bad output", []string{"--output", "yaml"}, "unsupported output format"},
		{"bad log level", []string{"--log-level", "loud"}, "unsupported log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			cmd := newRootCmd()
			cmd.SetArgs(append([]string{"config", "set-profile", "--name", "p"}, tt.args...))
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigUseProfile_Unknown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(emptyUserConfig()))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"config", "use-profile", "missing"})
	require.EqualError(t, cmd.Execute(), `profile "missing" not found`)
}
