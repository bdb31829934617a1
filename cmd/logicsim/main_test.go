package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logicsim/internal/config"
	"logicsim/internal/domain"
)

const xorDocument = `{
  "__class": "Graph",
  "nodes": {
    "a": {"type": "CONSTANT", "outputs": [true]},
    "b": {"type": "BUTTON", "outputs": [false], "y": 50},
    "x": {"type": "XOR", "x": 100, "y": 25}
  },
  "order": ["a", "b", "x"],
  "edges": [
    {"source": "a", "target": "x", "sourceHandle": 0, "targetHandle": 0},
    {"source": "b", "target": "x", "sourceHandle": 0, "targetHandle": 1}
  ]
}`

const cycleDocument = `{
  "nodes": {
    "n": {"type": "NOT"}
  },
  "edges": [
    {"source": "n", "target": "n", "sourceHandle": 0, "targetHandle": 0}
  ]
}`

// run executes the CLI with an isolated config and database
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvDatabaseURL, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "test.db")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "xor.json", xorDocument)

	out, err := run(t, dir, "simulate", path)
	require.NoError(t, err)

	var view domain.GraphView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Nodes, 3)
	assert.Equal(t, "x", view.Nodes[2].ID)
	assert.Equal(t, []bool{true}, view.Nodes[2].Outputs)
	assert.Len(t, view.Edges, 2)
}

func TestSimulateCommandCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "loop.json", cycleDocument)

	out, err := run(t, dir, "simulate", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCyclicGraph))
	assert.Empty(t, out)
}

func TestSimulateCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "simulate", filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}

func TestImportExportListDelete(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "xor.json", xorDocument)

	out, err := run(t, dir, "--circuit", "adder", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `into "adder": 3 nodes, 2 edges, 0 dropped`)

	out, err = run(t, dir, "--circuit", "adder", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "__class: Graph")
	assert.Contains(t, out, "XorGate")

	exported := filepath.Join(dir, "out.json")
	_, err = run(t, dir, "--circuit", "adder", "export", "-o", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"__class"`)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "adder"))

	_, err = run(t, dir, "delete", "adder")
	require.NoError(t, err)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Equal(t, 1, len(strings.Split(strings.TrimSpace(out), "\n")))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "logicsim.yaml")

	_, err := run(t, dir, "config", "init", "--path", path)
	require.NoError(t, err)

	cfg, _, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Addr, cfg.Server.Addr)

	_, err = run(t, dir, "config", "init", "--path", path)
	assert.Error(t, err)

	_, err = run(t, dir, "config", "init", "--path", path, "--force")
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "--circuit", "demo", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "circuit=demo")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "yaml", formatFor("c.yml", ""))
	assert.Equal(t, "json", formatFor("c.txt", ""))
	assert.Equal(t, "yaml", formatFor("c.json", "yaml"))
}
