package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInspectPrintsReport(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "payload.json", `{"EmpRefNo":"E100","Roleid":"3","Createdby":"","Action":"Approve","Note":"HR : a : ok"}`)

	out, err := runCmd(t, "inspect", payload, "--schema", "staff")
	require.NoError(t, err)

	var report struct {
		Schema          string   `json:"schema"`
		MissingRequired []string `json:"missing_required"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "staff", report.Schema)
	assert.Contains(t, report.MissingRequired, "Createdby")
}

func TestInspectStrictFailsOnMissingFields(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "payload.json", `{"EmpRefNo":"E100"}`)

	_, err := runCmd(t, "inspect", payload, "--schema", "staff", "--strict")
	require.ErrorIs(t, err, errPayloadNotClean)
}

func TestInspectWithSchemaFileWritesReportFile(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "payload.json", `{"RefNo":"VP-1","Amount":12}`)
	schema := writeFile(t, dir, "schema.yaml", "name: custom\nexpected: [RefNo, Amount]\nrequired: [RefNo]\n")

	out, err := runCmd(t, "inspect", payload, "--schema", schema, "--out", dir)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "payload-report-"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schema": "custom"`)
}

func TestInspectRejectsUnknownSchemaAndBadJSON(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "payload.json", `{"a":1}`)
	_, err := runCmd(t, "inspect", payload, "--schema", "nope")
	require.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `[1,2]`)
	_, err = runCmd(t, "inspect", bad)
	require.Error(t, err)
}

func TestJobsTriggerRejectsUnknownJob(t *testing.T) {
	_, err := runCmd(t, "jobs", "trigger", "ledger:rebuild", "--redis", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported job")
}
