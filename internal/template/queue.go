package template

import (
	"regexp"
	"strings"
)

// commentPrefixes mark lines that never produce a queue item.
var commentPrefixes = []string{"#", "//", "::"}

// describedLine matches "description = command". The description is either
// one bare word or a double-quoted phrase, and the '=' must have whitespace
// on both sides. Anything else, such as "echo total = 5" or
// "echo COM1={comport1}", is an ordinary command.
var describedLine = regexp.MustCompile(`^(?:([A-Za-z0-9_.-]+)|"([^"{}]+)")\s+=\s+(\S.*)$`)

// Line is one runnable line of a template body.
type Line struct {
	Number      int    // 1-based line number in the body
	Text        string // command text, tokens unexpanded
	Description string // label from "description = command", if any
}

// Item is one command ready to run.
type Item struct {
	Command     string // expanded command line handed to the interpreter
	Verbose     string // expanded command with secrets masked
	Friendly    string // description, or the unexpanded template line
	Description string
	Line        int
}

// Display returns the verbose or friendly form of the item.
func (it Item) Display(detailed bool) string {
	if detailed {
		return it.Verbose
	}
	return it.Friendly
}

// IsComment reports whether a (trimmed or untrimmed) line is a comment.
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range commentPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	upper := strings.ToUpper(trimmed)
	return upper == "REM" || strings.HasPrefix(upper, "REM ") || strings.HasPrefix(upper, "REM\t")
}

// ParseLines splits a template body into runnable lines, skipping blank
// lines and comments.
func ParseLines(body string) []Line {
	if body == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	lines := make([]Line, 0, len(raw))
	for i, text := range raw {
		text = strings.TrimSpace(text)
		if text == "" || IsComment(text) {
			continue
		}

		line := Line{Number: i + 1, Text: text}
		if m := describedLine.FindStringSubmatch(text); m != nil {
			line.Description = strings.TrimSpace(m[1] + m[2])
			line.Text = strings.TrimSpace(m[3])
		}
		lines = append(lines, line)
	}
	return lines
}

// BuildQueue expands every runnable line of body into a queue item. Lines
// go through ExpandText, so whitespace inside a command is kept as written.
func (e Expander) BuildQueue(body string, b Bindings) []Item {
	masked := e.Masked(b, DefaultMask)

	lines := ParseLines(body)
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		friendly := l.Description
		if friendly == "" {
			friendly = l.Text
		}
		items = append(items, Item{
			Command:     strings.TrimSpace(e.ExpandText(l.Text, b)),
			Verbose:     strings.TrimSpace(e.ExpandText(l.Text, masked)),
			Friendly:    friendly,
			Description: l.Description,
			Line:        l.Number,
		})
	}
	return items
}

// BuildQueue builds a queue with the default alias profile.
func BuildQueue(body string, b Bindings) []Item {
	return defaultExpander.BuildQueue(body, b)
}
