package envselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventmgmt/eventctl/internal/cli/config"
	"github.com/eventmgmt/eventctl/internal/cli/userconfig"
)

func twoEnvs() *config.Config {
	return &config.Config{Environments: []config.Environment{
		{Name: "prod", BaseURL: "https://events.example.com/api"},
		{Name: "staging", BaseURL: "https://staging.example.com/api"},
	}}
}

func failPrompt(t *testing.T) Prompter {
	return func(*config.Config) (*config.Environment, error) {
		t.Fatal("prompt should not be shown")
		return nil, nil
	}
}

func TestResolve_ExplicitName(t *testing.T) {
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())

	env, err := resolve(twoEnvs(), "staging", failPrompt(t))
	require.NoError(t, err)
	assert.Equal(t, "staging", env.Name)

	_, err = resolve(twoEnvs(), "dev", failPrompt(t))
	require.Error(t, err)
}

func TestResolve_SelectedEnvironment(t *testing.T) {
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())
	require.NoError(t, userconfig.SetSelectedEnvironment("staging"))

	env, err := resolve(twoEnvs(), "", failPrompt(t))
	require.NoError(t, err)
	assert.Equal(t, "staging", env.Name)
}

func TestResolve_StaleSelectionFallsThroughToPrompt(t *testing.T) {
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())
	require.NoError(t, userconfig.SetSelectedEnvironment("deleted"))

	prompted := false
	env, err := resolve(twoEnvs(), "", func(cfg *config.Config) (*config.Environment, error) {
		prompted = true
		return &cfg.Environments[0], nil
	})
	require.NoError(t, err)
	assert.True(t, prompted)
	assert.Equal(t, "prod", env.Name)

	selected, err := userconfig.GetSelectedEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "prod", selected)
}

func TestResolve_SingleEnvironmentIsAutoSelected(t *testing.T) {
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())

	env, err := resolve(config.DefaultConfig(), "", failPrompt(t))
	require.NoError(t, err)
	assert.Equal(t, "local", env.Name)

	selected, err := userconfig.GetSelectedEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "local", selected)
}

func TestResolve_PromptCancelled(t *testing.T) {
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())

	_, err := resolve(twoEnvs(), "", func(*config.Config) (*config.Environment, error) {
		return nil, errors.New("environment selection cancelled: ^C")
	})
	require.Error(t, err)
}

func TestPromptEnvironmentSelection_NoEnvironments(t *testing.T) {
	_, err := PromptEnvironmentSelection(&config.Config{})
	require.Error(t, err)
}
