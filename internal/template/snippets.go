package template

import "strings"

// Snippet is a ready-made template line offered when building templates.
type Snippet struct {
	Key         string // lookup key, e.g. "demand-reset"
	Name        string
	Category    string
	Description string
	Text        string
}

// Line returns the snippet as a labelled template line.
func (s Snippet) Line() string {
	return `"` + s.Name + `" = ` + s.Text
}

const meterMatePrefix = "START /WAIT MeterMate {username} {password} {opco}"

// Snippets lists the built-in snippets grouped by category, MeterMate first.
var Snippets = []Snippet{
	{Key: "set-comport-1", Name: "Set ComPort 1", Category: "MeterMate",
		Description: "Set MeterMate COM port to {comport1}",
		Text:        meterMatePrefix + " /ComPort {comport1}"},
	{Key: "set-comport-2", Name: "Set ComPort 2", Category: "MeterMate",
		Description: "Set MeterMate COM port to {comport2}",
		Text:        meterMatePrefix + " /ComPort {comport2}"},
	{Key: "demand-reset", Name: "Demand Reset", Category: "MeterMate",
		Description: "Perform a demand reset at 9600 opto baud",
		Text:        meterMatePrefix + " /OPTOBAUDRATE 9600 /Demand"},
	{Key: "master-reset", Name: "Master Reset", Category: "MeterMate",
		Description: "Perform a master reset at 9600 opto baud",
		Text:        meterMatePrefix + " /OPTOBAUDRATE 9600 /Master"},
	{Key: "rdc-open", Name: "RDC Open", Category: "MeterMate",
		Description: "RDC command: Open (9600 opto baud)",
		Text:        meterMatePrefix + " /OPTOBAUDRATE 9600 /COMMAND /STATE Open"},
	{Key: "rdc-close", Name: "RDC Close", Category: "MeterMate",
		Description: "RDC command: Close (9600 opto baud)",
		Text:        meterMatePrefix + " /OPTOBAUDRATE 9600 /COMMAND /STATE Close"},
	{Key: "program", Name: "Program", Category: "MeterMate",
		Description: "Program using /PRO with the program path quoted when needed",
		Text:        meterMatePrefix + " /OPTOBAUDRATE 9600 /Program /PRO {Q:program} /MID 000000000000000000 /TRD Yes"},

	{Key: "echo-coms", Name: "Echo COMs", Category: "Basics",
		Description: "Echo resolved COM port tokens",
		Text:        "echo COM1={comport1} COM2={comport2}"},
	{Key: "cd-wd", Name: "CD to Working Dir", Category: "Basics",
		Description: "Change directory to the working directory",
		Text:        "cd {Q:wd}"},
	{Key: "program-help", Name: "Run Program (help)", Category: "Basics",
		Description: "Run the selected program with --help",
		Text:        "{Q:program} --help"},

	{Key: "copy-quoted", Name: "Copy (quoted)", Category: "File Ops",
		Description: "Copy example, quoting the working directory",
		Text:        `copy {Q:wd}\source.txt {Q:wd}\dest.txt`},
	{Key: "make-dir", Name: "Make Dir", Category: "File Ops",
		Description: "Create a folder under the working directory",
		Text:        `mkdir {Q:wd}\output`},

	{Key: "com1-9600", Name: "COM1 9600N81", Category: "Serial",
		Description: "Configure COM1 with common settings",
		Text:        "mode {comport1}: baud=9600 parity=n data=8 stop=1"},
	{Key: "com2-115200", Name: "COM2 115200N81", Category: "Serial",
		Description: "Configure COM2 with high-speed settings",
		Text:        "mode {comport2}: baud=115200 parity=n data=8 stop=1"},

	{Key: "ping-localhost", Name: "Ping localhost", Category: "Diagnostics",
		Description: "One ping to loopback",
		Text:        "ping -n 1 127.0.0.1"},
}

// LookupSnippet finds a snippet by key or display name, ignoring case.
func LookupSnippet(name string) (Snippet, bool) {
	name = strings.TrimSpace(name)
	for _, s := range Snippets {
		if strings.EqualFold(s.Key, name) || strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Snippet{}, false
}

// AppendSnippets adds each snippet as its own line after body.
func AppendSnippets(body string, snippets ...Snippet) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(body, " \t\r\n"))
	for _, s := range snippets {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Line())
	}
	return b.String()
}
