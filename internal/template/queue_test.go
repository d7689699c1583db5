package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsComment(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"# comment", true},
		{"   # indented", true},
		{"// c style", true},
		{":: batch style", true},
		{"REM batch", true},
		{"rem lower case", true},
		{"REM", true},
		{"REMOVE files", false},
		{"echo # not a comment", false},
		{"echo hi", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComment(tt.line))
		})
	}
}

func TestParseLines_SkipsCommentsAndBlanks(t *testing.T) {
	lines := ParseLines("# comment\necho hi\n:: also comment\necho bye")

	require.Len(t, lines, 2)
	assert.Equal(t, "echo hi", lines[0].Text)
	assert.Equal(t, 2, lines[0].Number)
	assert.Equal(t, "echo bye", lines[1].Text)
	assert.Equal(t, 4, lines[1].Number)
}

func TestParseLines_CRLF(t *testing.T) {
	lines := ParseLines("echo one\r\n\r\nREM skip\r\necho two\r\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "echo one", lines[0].Text)
	assert.Equal(t, "echo two", lines[1].Text)
}

func TestParseLines_Descriptions(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantText    string
		wantDescrip string
	}{
		{
			name:        "described command",
			line:        "Flash = meter.exe --port {COM1}",
			wantText:    "meter.exe --port {COM1}",
			wantDescrip: "Flash",
		},
		{
			name:     "equals inside a command is not a label",
			line:     "echo COM1={comport1} USER={username}",
			wantText: "echo COM1={comport1} USER={username}",
		},
		{
			name:     "token on the left is not a label",
			line:     "{program} = value",
			wantText: "{program} = value",
		},
		{
			name:        "quoted label",
			line:        `"Flash meter" = meter.exe --port {COM1}`,
			wantText:    "meter.exe --port {COM1}",
			wantDescrip: "Flash meter",
		},
		{
			name:     "command with spaced equals is not a label",
			line:     "echo total = 5",
			wantText: "echo total = 5",
		},
		{
			name:     "switches before equals are not a label",
			line:     "robocopy src dst /XF a = b",
			wantText: "robocopy src dst /XF a = b",
		},
		{
			name:     "path on the left is not a label",
			line:     "/usr/bin/test = x",
			wantText: "/usr/bin/test = x",
		},
		{
			name:     "missing spaces around equals",
			line:     "key=value",
			wantText: "key=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := ParseLines(tt.line)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantText, lines[0].Text)
			assert.Equal(t, tt.wantDescrip, lines[0].Description)
		})
	}
}

func TestParseLines_Empty(t *testing.T) {
	assert.Empty(t, ParseLines(""))
	assert.Empty(t, ParseLines("\n\n# only comments\n// here\n"))
}

func TestBuildQueue(t *testing.T) {
	body := `# login then flash
Login = login.exe -u {username} -p {password}
meter.exe --port {Q:COM1} --prog {Q:program}
REM done`

	b := Values{
		ComPort1: "COM3",
		Username: "tech1",
		Password: "s3cret",
		Program:  "my app.bin",
	}.Bindings()

	items := BuildQueue(body, b)
	require.Len(t, items, 2)

	assert.Equal(t, "login.exe -u tech1 -p s3cret", items[0].Command)
	assert.Equal(t, "login.exe -u tech1 -p "+DefaultMask, items[0].Verbose)
	assert.Equal(t, "Login", items[0].Friendly)
	assert.Equal(t, "Login", items[0].Description)
	assert.Equal(t, 2, items[0].Line)

	assert.Equal(t, `meter.exe --port COM3 --prog "my app.bin"`, items[1].Command)
	assert.Equal(t, items[1].Command, items[1].Verbose)
	assert.Equal(t, "meter.exe --port {Q:COM1} --prog {Q:program}", items[1].Friendly)
	assert.Empty(t, items[1].Description)
}

func TestBuildQueue_KeepsWhitespaceInsideCommands(t *testing.T) {
	items := BuildQueue("printf \"a  b\"\n  echo\t{opco}  x  ", Bindings{TokenOpco: "north"})
	require.Len(t, items, 2)
	assert.Equal(t, `printf "a  b"`, items[0].Command)
	assert.Equal(t, "echo\tnorth  x", items[1].Command)
}

func TestItemDisplay(t *testing.T) {
	it := Item{Verbose: "full", Friendly: "short"}
	assert.Equal(t, "full", it.Display(true))
	assert.Equal(t, "short", it.Display(false))
}

func TestTemplateIsQueue(t *testing.T) {
	assert.False(t, Template{Text: "echo one"}.IsQueue())
	assert.False(t, Template{Text: "# note\necho one"}.IsQueue())
	assert.True(t, Template{Text: "echo one\necho two"}.IsQueue())
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("Flash", " flash "))
	assert.False(t, SameName("flash", "flash2"))
}
