package exec

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Where a located program was found.
const (
	FoundInWorkDir = "workdir"
	FoundInPath    = "path"
	FoundInCommon  = "common"
)

// ProbeResult holds the outcome of looking for a program.
type ProbeResult struct {
	Program     string   // name that was searched for
	Path        string   // first match, "" when not found
	Source      string   // FoundInWorkDir, FoundInPath or FoundInCommon
	CommonPaths []string // every match in commonBinPaths
}

// Found reports whether the program was located anywhere.
func (r *ProbeResult) Found() bool {
	return r != nil && r.Path != ""
}

// commonBinPaths are typical install locations that are often missing from
// PATH when cq is started from a desktop launcher.
var commonBinPaths = []string{
	"$HOME/.local/bin",
	"$HOME/bin",
	"$HOME/go/bin",
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/opt/local/bin",
}

// LocateProgram searches for name the way a queue item would resolve it:
// relative to workDir first, then PATH, then common install directories.
func LocateProgram(name, workDir string) *ProbeResult {
	result := &ProbeResult{Program: name}
	name = strings.Trim(strings.TrimSpace(name), `"`)
	if name == "" {
		return result
	}

	// Explicit paths are only resolved against the working directory.
	if strings.ContainsAny(name, `/\`) {
		p := name
		if !filepath.IsAbs(p) && workDir != "" {
			p = filepath.Join(workDir, p)
		}
		if isExecutable(p) {
			result.Path = p
			result.Source = FoundInWorkDir
		}
		return result
	}

	if workDir != "" {
		for _, candidate := range candidates(filepath.Join(workDir, name)) {
			if isExecutable(candidate) {
				result.Path = candidate
				result.Source = FoundInWorkDir
				return result
			}
		}
	}

	if p, err := osexec.LookPath(name); err == nil {
		result.Path = p
		result.Source = FoundInPath
		return result
	}

	for _, dir := range commonBinPaths {
		for _, candidate := range candidates(filepath.Join(os.ExpandEnv(dir), name)) {
			if isExecutable(candidate) {
				result.CommonPaths = append(result.CommonPaths, candidate)
			}
		}
	}
	if len(result.CommonPaths) > 0 {
		result.Path = result.CommonPaths[0]
		result.Source = FoundInCommon
	}
	return result
}

// candidates returns p plus its PATHEXT variants on Windows.
func candidates(p string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(p) != "" {
		return []string{p}
	}
	out := []string{p}
	exts := os.Getenv("PATHEXT")
	if exts == "" {
		exts = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(exts, ";") {
		if ext != "" {
			out = append(out, p+strings.ToLower(ext))
		}
	}
	return out
}

func isExecutable(p string) bool {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}

// Suggestion explains how to make a located or missing program usable.
func (r *ProbeResult) Suggestion() string {
	switch {
	case r == nil || r.Program == "":
		return ""
	case r.Source == FoundInCommon:
		return "Found '" + r.Program + "' at " + r.Path + " but it isn't in PATH.\n" +
			"Use the full path in your template or add " + filepath.Dir(r.Path) + " to PATH."
	case r.Found():
		return ""
	default:
		return "'" + r.Program + "' wasn't found in the working directory, PATH, or common install locations.\n" +
			"Set 'working_dir' in .cq.yaml or use the program's full path."
	}
}
