package exec

import (
	"fmt"
	"regexp"
	"strings"
)

// commandNotFoundPatterns are regex patterns to detect "command not found" errors
// from various shells. These require exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// dependencyNotFoundPatterns catch a tool failing because something it
// calls is missing. These can have any exit code.
var dependencyNotFoundPatterns = []*regexp.Regexp{
	// make: go: No such file or directory
	regexp.MustCompile(`(?i)make: (\S+): No such file or directory`),
	// cmd.exe: 'meter' is not recognized as an internal or external command
	regexp.MustCompile(`(?i)'(\S+)' is not recognized`),
	// /bin/sh: go: not found (from scripts)
	regexp.MustCompile(`(?i)/bin/sh: (\S+): not found`),
	// env: go: No such file or directory (from #!/usr/bin/env go)
	regexp.MustCompile(`(?i)env: (\S+): No such file or directory`),
}

// IsCommandNotFound checks if the error output indicates a missing command.
// Returns the command name (if extractable) and whether it's a command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	// Exit code 127 is the standard for command not found
	if exitCode != 127 {
		return "", false
	}

	// Try to extract the command name from stderr
	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}

	// Exit code is 127 but couldn't extract command name
	return "", true
}

// IsDependencyNotFound checks whether stderr names a missing command.
// Returns the command name and whether one was detected.
func IsDependencyNotFound(stderr string) (string, bool) {
	for _, pattern := range dependencyNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}
	return "", false
}

// MissingCommandHint returns a one-line notice when a queue item's exit code
// and stderr say the program could not be found, or "" otherwise.
func MissingCommandHint(command, stderr string, exitCode int) string {
	if exitCode == 0 {
		return ""
	}

	name, notFound := IsCommandNotFound(stderr, exitCode)
	if !notFound {
		name, notFound = IsDependencyNotFound(stderr)
	}
	if !notFound {
		return ""
	}

	if name == "" {
		parts := strings.Fields(command)
		if len(parts) == 0 {
			return ""
		}
		name = strings.Trim(parts[0], `"`)
	}
	return fmt.Sprintf("'%s' was not found. Check the working directory or run 'cq which %s'.", name, name)
}
