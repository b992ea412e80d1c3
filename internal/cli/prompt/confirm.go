// Package prompt wraps interactive terminal prompts for the put CLI.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user backed out with Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user backed out rather than
// the prompt failing.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

// Confirm asks label as a yes/no question and reports the answer. Enter
// picks the default. Ctrl+C returns ErrAborted.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, hint),
		IsConfirm: true,
	}

	answer, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports an explicit "n" as ErrAbort.
		return false, nil
	case err != nil:
		if answer == "" {
			return defaultYes, nil
		}
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ConfirmWithForce skips the prompt when force is set. Remove-style
// commands pass their --force flag through here.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}
