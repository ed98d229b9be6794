package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kdbxCSV = "\"Group\",\"Title\",\"Username\",\"Password\",\"URL\",\"Notes\"\n" +
	"\"Root/Web\",\"mail\",\"ada\",\"pw\",\"https://mail.example.com\",\"\"\n" +
	"\"Root\",\"\",\"bob\",\"x\",\"\",\"\"\n"

type harness struct {
	fs     afero.Fs
	stdin  *strings.Reader
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	env    map[string]string
}

func newHarness(stdin string) *harness {
	return &harness{
		fs:     afero.NewMemMapFs(),
		stdin:  strings.NewReader(stdin),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		env:    map[string]string{},
	}
}

func (h *harness) run(args ...string) error {
	return Run(context.Background(), args, Env{
		Fs:     h.fs,
		Stdin:  h.stdin,
		Stdout: h.stdout,
		Stderr: h.stderr,
		Now:    func() time.Time { return time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC) },
		Getenv: func(k string) string { return h.env[k] },
	})
}

func TestRun_Summary(t *testing.T) {
	h := newHarness("")
	require.NoError(t, afero.WriteFile(h.fs, "export.csv", []byte(kdbxCSV), 0o600))

	require.NoError(t, h.run("-in", "export.csv", "-ref", "team"))

	out := h.stdout.String()
	assert.Contains(t, out, `imported 1 of 2 rows as kdbx into "team" (3 folders)`)
	assert.Contains(t, out, "line 3:")
	assert.Contains(t, out, "[VAL001]")
}

func TestRun_DefaultReference(t *testing.T) {
	h := newHarness(kdbxCSV)
	require.NoError(t, h.run())
	assert.Contains(t, h.stdout.String(), `into "import-2026-03-01-090507"`)
}

func TestRun_JSON(t *testing.T) {
	h := newHarness(kdbxCSV)
	require.NoError(t, h.run("-json", "-ref", "team"))

	var got struct {
		Format        string `json:"format"`
		RowsAttempted int    `json:"rowsAttempted"`
		Resources     []struct {
			Name             string `json:"name"`
			FolderParentPath string `json:"folder_parent_path"`
		} `json:"resources"`
		ResourceErrors []struct {
			Line int    `json:"line"`
			Code string `json:"code"`
		} `json:"resourceErrors"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, "kdbx", got.Format)
	assert.Equal(t, 2, got.RowsAttempted)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, "team/Root/Web", got.Resources[0].FolderParentPath)
	require.Len(t, got.ResourceErrors, 1)
	assert.Equal(t, 3, got.ResourceErrors[0].Line)
	assert.Equal(t, "VAL001", got.ResourceErrors[0].Code)
}

func TestRun_ExportToStdout(t *testing.T) {
	h := newHarness(kdbxCSV)
	require.NoError(t, h.run("-export", "chromium"))

	out := h.stdout.String()
	assert.NotContains(t, out, "imported", "summary is suppressed when the export goes to stdout")
	assert.Contains(t, out, "mail")
	assert.Contains(t, out, "https://mail.example.com")
}

func TestRun_ExportToFile(t *testing.T) {
	h := newHarness(kdbxCSV)
	require.NoError(t, h.run("-export", "kdbx", "-out", "out.csv", "-flatten", "-ref", "team"))

	assert.Contains(t, h.stdout.String(), "imported 1 of 2 rows")
	data, err := afero.ReadFile(h.fs, "out.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `"Group","Title"`))
	assert.Contains(t, string(data), `"team"`)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		env   map[string]string
		args  []string
		want  string
	}{
		{name: "unsupported header", stdin: "a,b\n1,2\n", want: "IMP001"},
		{name: "empty input", stdin: "", want: "FILE004"},
		{name: "missing file", args: []string{"-in", "nope.csv"}, want: "read nope.csv"},
		{name: "bad generation", stdin: kdbxCSV, args: []string{"-generation", "v3"}, want: "unknown schema generation"},
		{name: "unknown export format", stdin: kdbxCSV, args: []string{"-export", "nope"}, want: "unknown format"},
		{
			name:  "catalog from env",
			stdin: kdbxCSV,
			env:   map[string]string{"IMPORT_CATALOG_PATH": "missing.yaml"},
			want:  "read catalog missing.yaml",
		},
		{name: "bad flag", args: []string{"-bogus"}, want: "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.stdin)
			for k, v := range tt.env {
				h.env[k] = v
			}
			err := h.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
