package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	beginMarker = "# BEGIN zollpilot integration"
	endMarker   = "# END zollpilot integration"
)

// ToggleShellIntegration installs or uninstalls shell completion for
// zollpilot in the rc file of the shell named by the SHELL environment
// variable. See Toggle.
func ToggleShellIntegration(install *bool) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	exePath, err := os.Executable()
	if err != nil {
		exePath = "zollpilot"
	}
	return Toggle(filepath.Base(os.Getenv("SHELL")), home, exePath, install)
}

// RCFile returns the rc file modified for the given shell. Unknown shells
// use the bash rc file.
func RCFile(shell, home string) string {
	switch shell {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "fish":
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

func snippet(shell, exePath string) string {
	var body string
	switch shell {
	case "zsh":
		body = fmt.Sprintf("source <(%q completion zsh)", exePath)
	case "fish":
		body = fmt.Sprintf("%q completion fish | source", exePath)
	default:
		body = fmt.Sprintf("source <(%q completion bash)", exePath)
	}
	return beginMarker + "\n" + body + "\n" + endMarker + "\n"
}

// Toggle adds or removes a BEGIN/END marked block that loads zollpilot's
// completion script. A nil install flips the current state; otherwise the
// block is installed (true) or removed (false). It returns a message
// describing what happened.
func Toggle(shell, home, exePath string, install *bool) (string, error) {
	rcFile := RCFile(shell, home)
	if err := os.MkdirAll(filepath.Dir(rcFile), 0o755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(rcFile)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	content := string(data)
	beginIdx := strings.Index(content, beginMarker)
	endIdx := strings.Index(content, endMarker)
	installed := beginIdx >= 0 && endIdx > beginIdx

	if installed && (install == nil || !*install) {
		before := content[:beginIdx]
		after := strings.TrimPrefix(content[endIdx+len(endMarker):], "\n")
		newContent := strings.TrimRight(before, "\n") + "\n" + strings.TrimLeft(after, "\n")
		if strings.TrimSpace(newContent) == "" {
			newContent = ""
		}
		if err := os.WriteFile(rcFile, []byte(newContent), 0o644); err != nil {
			return "", err
		}
		return "Shell integration removed. Reload your shell for changes to take effect.", nil
	}
	if installed {
		return "Shell integration is already installed.", nil
	}
	if install != nil && !*install {
		return "Shell integration is not installed.", nil
	}

	var b strings.Builder
	if len(content) > 0 {
		b.WriteString(strings.TrimRight(content, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(snippet(shell, exePath))
	if err := os.WriteFile(rcFile, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("Shell integration installed in %s. Reload your shell for changes to take effect.", rcFile), nil
}
