package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elecmate/mmgen/internal/workflow"
)

func TestToastNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := newToastNotifier(&buf, true)

	n.Notify(workflow.LevelError, "Generation failed: boom")

	assert.Equal(t, "[error] Generation failed: boom\n", buf.String())
}
