package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/template"
)

func item(line int, friendly string, code int, err error) exec.ItemResult {
	start := time.Date(2026, 1, 1, 0, 0, line, 0, time.UTC)
	return exec.ItemResult{
		Index:    line - 1,
		Item:     template.Item{Friendly: friendly, Line: line},
		ExitCode: code,
		Err:      err,
		Started:  start,
		Finished: start.Add(500 * time.Millisecond),
	}
}

func TestRenderQueueSummary(t *testing.T) {
	tests := []struct {
		name  string
		res   *exec.QueueResult
		total int
		want  string
	}{
		{
			name:  "completed",
			res:   &exec.QueueResult{State: exec.Completed, Success: true, Items: []exec.ItemResult{item(1, "a", 0, nil), item(2, "b", 0, nil)}},
			total: 2,
			want:  "✓ 2 commands completed (1.5s)\n",
		},
		{
			name:  "empty",
			res:   &exec.QueueResult{State: exec.Completed, Success: true},
			want:  "✓ 0 commands completed (0.00s)\n",
		},
		{
			name:  "stopped on error",
			res:   &exec.QueueResult{State: exec.StoppedOnError, Items: []exec.ItemResult{item(1, "a", 0, nil), item(2, "Flash", 3, nil)}},
			total: 4,
			want:  "✗ Stopped on error: Flash exited 3 (1.5s)\n",
		},
		{
			name:  "faulted",
			res:   &exec.QueueResult{State: exec.Faulted, Items: []exec.ItemResult{item(1, "Flash", -1, errors.New("no shell"))}},
			total: 1,
			want:  "✗ Couldn't start: Flash (0.5s)\n",
		},
		{
			name:  "cancelled",
			res:   &exec.QueueResult{State: exec.Cancelled, Items: []exec.ItemResult{item(1, "a", -1, nil)}},
			total: 3,
			want:  "⊘ Cancelled after 1 of 3 commands (0.5s)\n",
		},
		{
			name:  "completed with failures",
			res:   &exec.QueueResult{State: exec.Completed, Success: true, Items: []exec.ItemResult{item(1, "a", 2, nil), item(2, "b", 0, nil), item(3, "c", -1, errors.New("x"))}},
			total: 3,
			want:  "✗ 2 of 3 commands failed (2.5s)\n  line 1  a  exit 2\n  line 3  c  not started\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderQueueSummary(tt.res, tt.total))
		})
	}

	assert.Empty(t, RenderQueueSummary(nil, 0))
}
