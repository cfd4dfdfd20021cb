package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// ModeOption is one entry of the mode picker.
type ModeOption struct {
	Name  string
	Label string
}

// NewModeForm builds the mode picker. The chosen mode is stored in
// selected, which also provides the preselected value.
func NewModeForm(options []ModeOption, selected *string) (*huh.Form, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no modes available")
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Name
		}
		huhOptions[i] = huh.NewOption(label, opt.Name)
	}

	field := huh.NewSelect[string]().
		Title("Scan mode").
		Description("Choose which probes to run").
		Options(huhOptions...).
		Value(selected)

	return huh.NewForm(huh.NewGroup(field)), nil
}

// PickMode displays the mode picker and returns the chosen mode
func PickMode(options []ModeOption, defaultMode string) (string, error) {
	selected := defaultMode
	form, err := NewModeForm(options, &selected)
	if err != nil {
		return "", err
	}
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// PromptForSelect displays a selection prompt with defaultValue preselected
func PromptForSelect(message string, options []string, defaultValue string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, opt)
	}

	selected := defaultValue
	selectField := huh.NewSelect[string]().
		Title(message).
		Options(huhOptions...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(selectField)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
