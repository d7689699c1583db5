package sessionlog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/cq/internal/errors"
)

// FileInfo describes one daily log file.
type FileInfo struct {
	Path string
	Day  time.Time
	Size int64
}

// Name returns the file's base name.
func (f FileInfo) Name() string {
	return filepath.Base(f.Path)
}

// List returns the daily log files in dir, newest day first.
// Files whose names are not a date are ignored. A missing dir is empty.
func List(dir string) ([]FileInfo, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Can't read log directory "+dir,
			"Check your permissions.")
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		day, err := time.ParseInLocation(DayLayout, strings.TrimSuffix(entry.Name(), fileExt), time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path: filepath.Join(dir, entry.Name()),
			Day:  day,
			Size: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Day.After(files[j].Day)
	})
	return files, nil
}

// CleanByAge deletes daily logs for days more than keepDays before now.
// Today's file is never removed. Returns the deleted paths.
func CleanByAge(dir string, keepDays int, now time.Time) ([]string, error) {
	if keepDays <= 0 {
		return nil, nil
	}

	files, err := List(dir)
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	cutoff := today.AddDate(0, 0, -keepDays)

	var removed []string
	for _, f := range files {
		if !f.Day.Before(cutoff) {
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			return removed, errors.WrapWithCode(err, errors.ErrExec,
				"Can't delete log file "+f.Path,
				"Check your permissions.")
		}
		removed = append(removed, f.Path)
	}
	return removed, nil
}

// CleanAll removes every daily log file in dir.
func CleanAll(dir string) ([]string, error) {
	files, err := List(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil {
			return removed, errors.WrapWithCode(err, errors.ErrExec,
				"Can't delete log file "+f.Path,
				"Check your permissions.")
		}
		removed = append(removed, f.Path)
	}
	return removed, nil
}
