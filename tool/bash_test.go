package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ai "github.com/spetersoncode/convo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBash(t *testing.T, reg Registration, args string) ai.ToolResult {
	t.Helper()
	res, err := NewRegistry(reg).Execute(context.Background(), ai.ToolCall{ID: "b", Name: BashToolName, Arguments: args})
	require.NoError(t, err)
	return res
}

func TestNewBashToolWorkingDir(t *testing.T) {
	_, err := NewBashTool(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewBashTool(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestBashTool(t *testing.T) {
	dir := t.TempDir()
	reg, err := NewBashTool(dir)
	require.NoError(t, err)
	assert.Equal(t, BashToolName, reg.Tool.Name)

	t.Run("runs in working directory", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "FACTS.txt"), []byte("x"), 0o644))
		res := runBash(t, reg, `{"command":"ls"}`)
		assert.False(t, res.IsError)
		assert.Contains(t, res.Content, "FACTS.txt")
		assert.Contains(t, res.Content, "[The command completed with exit code 0.]")
	})

	t.Run("reports non-zero exit code", func(t *testing.T) {
		res := runBash(t, reg, `{"command":"echo oops >&2; exit 3"}`)
		assert.False(t, res.IsError)
		assert.Contains(t, res.Content, "oops")
		assert.Contains(t, res.Content, "exit code 3")
	})

	t.Run("empty command is an error", func(t *testing.T) {
		res := runBash(t, reg, `{"command":"  "}`)
		assert.True(t, res.IsError)
	})

	t.Run("per-call timeout", func(t *testing.T) {
		start := time.Now()
		res := runBash(t, reg, `{"command":"sleep 5","timeout":1}`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "timed out")
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("timeout keeps partial output", func(t *testing.T) {
		res := runBash(t, reg, `{"command":"echo halfway; sleep 5","timeout":1}`)
		assert.True(t, res.IsError)
		assert.True(t, strings.HasPrefix(res.Content, "halfway\n"), res.Content)
		assert.Contains(t, res.Content, "[command timed out after 1s]")
	})

	t.Run("backgrounded command", func(t *testing.T) {
		start := time.Now()
		res := runBash(t, reg, `{"command":"echo started; sleep 5 &"}`)
		assert.False(t, res.IsError, res.Content)
		assert.Contains(t, res.Content, "started")
		assert.Contains(t, res.Content, "[The command completed with exit code 0.]")
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}

func TestBashToolTruncatesOutput(t *testing.T) {
	reg, err := NewBashTool(t.TempDir(), WithOutputLimits(Limits{MaxLines: 3}))
	require.NoError(t, err)

	res := runBash(t, reg, `{"command":"seq 1 10"}`)
	assert.True(t, strings.HasPrefix(res.Content, "1\n2\n3\n[Output truncated]"))
	assert.NotContains(t, res.Content, "\n4\n")
}

func TestBashToolEnv(t *testing.T) {
	reg, err := NewBashTool(t.TempDir(), WithBashEnv("CONVO_TEST_VALUE=fortytwo"))
	require.NoError(t, err)

	res := runBash(t, reg, `{"command":"echo $CONVO_TEST_VALUE"}`)
	assert.Contains(t, res.Content, "fortytwo")
}

func TestLimitsTruncate(t *testing.T) {
	text, cut := Limits{MaxBytes: 4}.truncate("abcdefgh")
	assert.True(t, cut)
	assert.Equal(t, "abcd", text)

	text, cut = Limits{MaxLines: 5, MaxBytes: 100}.truncate("a\nb")
	assert.False(t, cut)
	assert.Equal(t, "a\nb", text)
}
