package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/machine"
)

const pointDecls = `
[[struct]]
name = "point"
  [[struct.field]]
  name = "tag"
  type = "char"
  [[struct.field]]
  name = "x"
  type = "int"
`

func writeDecls(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestMachineCommandText(t *testing.T) {
	out, err := runCLI(t, "machine", "--format=text")
	require.NoError(t, err)
	require.Contains(t, out, "machine x86_64")
	require.Regexp(t, `int width\s+32`, out)
	require.Regexp(t, `pointer width\s+64`, out)
}

func TestMachineCommandRoundTripsTOML(t *testing.T) {
	out, err := runCLI(t, "machine", "--format=toml", "--target=aarch64-linux")
	require.NoError(t, err)
	m, err := machine.Decode([]byte(out), machine.FormatTOML)
	require.NoError(t, err)
	require.Equal(t, machine.MustPreset("aarch64-linux"), m)
}

func TestMachineCommandRejectsUnknownTarget(t *testing.T) {
	_, err := runCLI(t, "machine", "--format=text", "--target=pdp11")
	require.ErrorContains(t, err, "unknown target")
}

func TestEnvCommandWritesSymbolTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.symtab.json")
	out, err := runCLI(t, "env", "-o", path, "--msgpack=false")
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, json.Valid(data))
	var doc struct {
		SymbolTable map[string]json.RawMessage `json:"symbolTable"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc.SymbolTable, "__CPROVER_rounding_mode")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLayoutCommandReportsPadding(t *testing.T) {
	path := writeDecls(t, "shapes.toml", pointDecls)
	out, err := runCLI(t, "layout", "--ui=off", "--emit=", "--quiet=false", "--format=json", path)
	require.NoError(t, err)
	require.Contains(t, out, "point  size 8  align 4")

	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "    ") {
			rows = append(rows, strings.Join(strings.Fields(l), " "))
		}
	}
	require.Equal(t, []string{"0 tag char", "1 $pad0 24 bits", "4 x int"}, rows)
}

func TestLayoutCommandEmitsUnits(t *testing.T) {
	a := writeDecls(t, "a.toml", pointDecls)
	b := writeDecls(t, "b.toml", `
[[enum]]
name = "shape"
tag = "u8"
  [[enum.variant]]
  name = "circle"
  type = "double"
  [[enum.variant]]
  name = "none"
`)
	dir := t.TempDir()
	out, err := runCLI(t, "layout", "--ui=off", "--quiet", "--emit="+dir, "--format=json", "--jobs=2", a, b)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+filepath.Join(dir, "a.symtab.json"))

	data, err := os.ReadFile(filepath.Join(dir, "a.symtab.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"tag-point"`)

	data, err = os.ReadFile(filepath.Join(dir, "b.symtab.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"tag-shape"`)
	require.Contains(t, string(data), `"tag-shape-union"`)
	require.Contains(t, string(data), `"tag-shape-union::none::padded"`)
}

func TestLayoutCommandRejectsDuplicateUnits(t *testing.T) {
	a := writeDecls(t, "same.toml", pointDecls)
	b := writeDecls(t, "same.toml", pointDecls)
	_, err := runCLI(t, "layout", "--ui=off", "--quiet", "--emit=", a, b)
	require.ErrorContains(t, err, `both produce unit "same"`)
}

func TestLayoutCommandTimingsAndProfiles(t *testing.T) {
	path := writeDecls(t, "point.toml", pointDecls)
	heap := filepath.Join(t.TempDir(), "heap.pprof")
	_, stderr, err := runCLIStderr(t, "layout", "--ui=off", "--quiet", "--emit=", "--timings", "--mem-profile="+heap, path)
	require.NoError(t, err)
	require.Contains(t, stderr, "timings:")
	require.Contains(t, stderr, "layout point.toml")
	require.Contains(t, stderr, "1 aggregates")

	info, err := os.Stat(heap)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
