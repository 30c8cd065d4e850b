package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTool_NumbersLines(t *testing.T) {
	path := writeTemp(t, "first\nsecond\nthird\n")
	tool := &ReadTool{}

	res, err := tool.Execute(context.Background(), ReadInput{FilePath: path}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	lines := strings.Split(strings.TrimRight(res.LLMContent, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1\tfirst")
	assert.Contains(t, lines[2], "3\tthird")
}

func TestReadTool_OffsetAndLimit(t *testing.T) {
	path := writeTemp(t, "a\nb\nc\nd\ne\n")
	tool := &ReadTool{}

	offset, limit := 2, 2
	res, err := tool.Execute(context.Background(), ReadInput{
		FilePath: path,
		Offset:   &offset,
		Limit:    &limit,
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Contains(t, res.LLMContent, "2\tb")
	assert.Contains(t, res.LLMContent, "3\tc")
	assert.NotContains(t, res.LLMContent, "\ta\n")
	assert.NotContains(t, res.LLMContent, "\td\n")
}

func TestReadTool_TruncatesLongLines(t *testing.T) {
	path := writeTemp(t, strings.Repeat("x", 5000)+"\n")
	tool := &ReadTool{}

	res, err := tool.Execute(context.Background(), ReadInput{FilePath: path}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.LLMContent, "[truncated]")
}

func TestReadTool_EmptyFile(t *testing.T) {
	path := writeTemp(t, "")
	tool := &ReadTool{}

	res, err := tool.Execute(context.Background(), ReadInput{FilePath: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(empty file)", res.LLMContent)
}

func TestReadTool_MissingFile(t *testing.T) {
	tool := &ReadTool{}
	res, err := tool.Execute(context.Background(), ReadInput{FilePath: "/nonexistent/nope.txt"}, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.LLMContent, "failed to open")
}
