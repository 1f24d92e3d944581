package envselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/eventmgmt/eventctl/internal/cli/config"
	"github.com/eventmgmt/eventctl/internal/cli/userconfig"
)

// Prompter asks the user to pick an environment
type Prompter func(projectConfig *config.Config) (*config.Environment, error)

// ResolveEnvironment determines which environment to use based on the following priority:
// 1. If name is provided, use that environment
// 2. If user has a selected environment in their local config, use that
// 3. If only one environment in project config, use that
// 4. Otherwise, prompt user to select an environment interactively
func ResolveEnvironment(projectConfig *config.Config, name string) (*config.Environment, error) {
	return resolve(projectConfig, name, PromptEnvironmentSelection)
}

func resolve(projectConfig *config.Config, name string, prompt Prompter) (*config.Environment, error) {
	// Priority 1: Use environment name if provided
	if name != "" {
		return projectConfig.GetEnvironment(name)
	}

	// Priority 2: Use selected environment from user config
	selected, err := userconfig.GetSelectedEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selected != "" {
		env, err := projectConfig.GetEnvironment(selected)
		if err != nil {
			// Selected environment no longer exists in project config, clear it and continue
			_ = userconfig.SetSelectedEnvironment("")
		} else {
			return env, nil
		}
	}

	// Priority 3: If only one environment, use it automatically
	if len(projectConfig.Environments) == 1 {
		env := &projectConfig.Environments[0]
		// Save it as the selected environment
		if err := userconfig.SetSelectedEnvironment(env.Name); err != nil {
			// Don't fail if we can't save, just continue
			fmt.Printf("Warning: failed to save selected environment: %v\n", err)
		}
		return env, nil
	}

	// Priority 4: Prompt user to select an environment
	env, err := prompt(projectConfig)
	if err != nil {
		return nil, err
	}

	// Save the selected environment
	if err := userconfig.SetSelectedEnvironment(env.Name); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Printf("Warning: failed to save selected environment: %v\n", err)
	}

	return env, nil
}

// PromptEnvironmentSelection shows an interactive prompt for the user to select an environment
func PromptEnvironmentSelection(projectConfig *config.Config) (*config.Environment, error) {
	if len(projectConfig.Environments) == 0 {
		return nil, fmt.Errorf("no environments configured in %s", config.ConfigFileName)
	}

	// Create display labels for each environment
	type envOption struct {
		Label       string
		Environment *config.Environment
	}

	options := make([]envOption, len(projectConfig.Environments))
	for i := range projectConfig.Environments {
		env := &projectConfig.Environments[i]
		options[i] = envOption{
			Label:       fmt.Sprintf("%s (%s)", env.Name, env.BaseURL),
			Environment: env,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an environment",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment selection cancelled: %w", err)
	}

	return options[index].Environment, nil
}
