package ui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/smart-review/smart-review-cli/internal/workflow"
)

// Action is a user decision on a displayed scheduling run.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRegenerate      Action = "regenerate"
	ActionRegenerateSlot  Action = "regenerate-slot"
	ActionRegenerateGroup Action = "regenerate-group"
	ActionQuit            Action = "quit"
)

var actionLabels = map[Action]string{
	ActionApprove:         "Approve schedule",
	ActionReject:          "Reject schedule",
	ActionRegenerate:      "Regenerate whole schedule",
	ActionRegenerateSlot:  "Regenerate one slot",
	ActionRegenerateGroup: "Regenerate one group",
	ActionQuit:            "Quit",
}

func (a Action) Label() string {
	return actionLabels[a]
}

// Actions lists what the user may do in state. Approve is only offered for
// a fully successful run.
func Actions(state workflow.State) []Action {
	switch state {
	case workflow.GeneratedSuccess:
		return []Action{ActionApprove, ActionReject, ActionRegenerate, ActionRegenerateSlot, ActionRegenerateGroup, ActionQuit}
	case workflow.GeneratedFailure:
		return []Action{ActionRegenerate, ActionRegenerateSlot, ActionRegenerateGroup, ActionReject, ActionQuit}
	default:
		return []Action{ActionRegenerate, ActionQuit}
	}
}

// Credentials asks for the login email and password.
func Credentials(email string) (string, string, error) {
	var password string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(required("email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(required("password")),
	))

	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(email), password, nil
}

// ChooseAction asks what to do with the displayed run.
func ChooseAction(state workflow.State) (Action, error) {
	actions := Actions(state)
	options := make([]huh.Option[Action], len(actions))
	for i, a := range actions {
		options[i] = huh.NewOption(a.Label(), a)
	}

	var selected Action
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[Action]().
			Title("What next?").
			Options(options...).
			Value(&selected),
	))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// Reason asks for a free-text reason. When mandatory, blank input is
// refused by the form.
func Reason(title string, mandatory bool) (string, error) {
	var reason string

	input := huh.NewText().
		Title(title).
		Value(&reason)
	if mandatory {
		input = input.Validate(required("reason"))
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(reason), nil
}

// ID asks for a positive numeric id.
func ID(title string) (int, error) {
	var raw string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Value(&raw).
			Validate(func(s string) error {
				_, err := ParseID(s)
				return err
			}),
	))

	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return ParseID(raw)
}

// Confirm asks a yes/no question that defaults to no.
func Confirm(question string) (bool, error) {
	var yes bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&yes)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return yes, nil
}

func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, errors.New("enter a positive number")
	}
	return id, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
