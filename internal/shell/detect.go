// Package shell works out which shell d2o is running under, so completion
// output can default to that shell's format.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Shell string

const (
	Fish       Shell = "fish"
	Bash       Shell = "bash"
	Zsh        Shell = "zsh"
	PowerShell Shell = "powershell"
	Elvish     Shell = "elvish"
	Nushell    Shell = "nushell"
)

// binaries maps executable names found in $SHELL to shells.
var binaries = map[string]Shell{
	"fish":           Fish,
	"bash":           Bash,
	"zsh":            Zsh,
	"pwsh":           PowerShell,
	"powershell":     PowerShell,
	"powershell.exe": PowerShell,
	"pwsh.exe":       PowerShell,
	"elvish":         Elvish,
	"nu":             Nushell,
	"nu.exe":         Nushell,
}

// versionVars are set by a running shell and win over $SHELL, which only
// names the login shell.
var versionVars = []struct {
	name  string
	shell Shell
}{
	{"FISH_VERSION", Fish},
	{"ZSH_VERSION", Zsh},
	{"BASH_VERSION", Bash},
	{"NU_VERSION", Nushell},
}

// Detect returns the current shell from the process environment.
func Detect() (Shell, error) {
	return DetectFrom(os.Getenv)
}

// DetectFrom is Detect with a custom environment lookup.
func DetectFrom(getenv func(string) string) (Shell, error) {
	for _, v := range versionVars {
		if getenv(v.name) != "" {
			return v.shell, nil
		}
	}

	shellPath := getenv("SHELL")
	if shellPath == "" {
		return "", fmt.Errorf("could not detect current shell: $SHELL is not set")
	}
	base := strings.ToLower(filepath.Base(shellPath))
	sh, ok := binaries[base]
	if !ok {
		return "", fmt.Errorf("shell %q is not supported", base)
	}
	return sh, nil
}

// Parse validates and returns a Shell from a user-provided string.
func Parse(s string) (Shell, error) {
	sh, ok := binaries[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("shell %q is not supported (supported: fish, bash, zsh, powershell, elvish, nushell)", s)
	}
	return sh, nil
}

// CompletionsDir returns where the shell conventionally loads completion
// scripts from, or "" when it has no such directory.
func CompletionsDir(sh Shell) string {
	home, _ := os.UserHomeDir()
	switch sh {
	case Fish:
		return filepath.Join(home, ".config", "fish", "completions")
	case Bash:
		return filepath.Join(home, ".local", "share", "bash-completion", "completions")
	case Zsh:
		return filepath.Join(home, ".zsh", "completions")
	default:
		return ""
	}
}
