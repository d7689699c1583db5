package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineWriter(t *testing.T) {
	var got []string
	w := newLineWriter(func(line string) { got = append(got, line) })

	n, err := w.Write([]byte("first\nsec"))
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []string{"first"}, got, "partial line is held back")

	_, _ = w.Write([]byte("ond\r\n\nthird"))
	assert.Equal(t, []string{"first", "second", ""}, got)

	w.Flush()
	assert.Equal(t, []string{"first", "second", "", "third"}, got)

	w.Flush()
	assert.Len(t, got, 4, "flush with nothing buffered emits nothing")
}
