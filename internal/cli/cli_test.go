package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersFixture = "../../effects/fixture/testdata/users.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidate_Text(t *testing.T) {
	out, err := execute(t, "validate", usersFixture)
	require.NoError(t, err)
	assert.Equal(t, "ok    "+usersFixture+" (3 traces; fetch:fn, sql:tag)\n", out)
}

func TestValidate_ReportsEveryInvalidFile(t *testing.T) {
	broken := writeFixture(t, "traces:\n  - steps: [{returns: 1}, {returns: 2}]\n")

	out, err := execute(t, "validate", "--format", "json", usersFixture, broken)
	assert.EqualError(t, err, "1 of 2 fixture(s) invalid")

	var results []ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.Equal(t, map[string]string{"sql": "tag", "fetch": "fn"}, results[0].Effects)
	assert.False(t, results[1].Valid)
	assert.Contains(t, results[1].Error, "invalid trace")
}

func TestValidate_RequiresFile(t *testing.T) {
	_, err := execute(t, "validate")
	assert.Error(t, err)
}

func TestShow_Text(t *testing.T) {
	path := writeFixture(t, `
traces:
  - name: lucky
    steps:
      - yields: {kind: fn, name: random, result: 4}
      - returns: 4
`)
	out, err := execute(t, "show", path)
	require.NoError(t, err)
	assert.Regexp(t, `^# [0-9a-f]{16}\ntrace "lucky"\n  yields fn random \[\] -> 4\n  returns 4\n$`, out)
}

func TestShow_JSON(t *testing.T) {
	out, err := execute(t, "show", "--format", "json", usersFixture)
	require.NoError(t, err)

	var view ProgramView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Traces, 3)
	assert.Equal(t, "stripe customers", view.Traces[2].Name)
	assert.Len(t, view.Traces[2].Steps, 3)
	assert.Len(t, view.Traces[0].Fingerprint, 16)
}

func TestRoot_ConfigFormat(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tracify.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output:\n  format: json\n"), 0644))

	out, err := execute(t, "--config", cfg, "validate", usersFixture)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestRoot_InvalidFormatFlag(t *testing.T) {
	_, err := execute(t, "validate", "--format", "xml", usersFixture)
	assert.ErrorContains(t, err, `invalid format "xml"`)
}
