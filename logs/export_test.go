package logs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/monobilisim/logdesk/common/api/client"
	"github.com/monobilisim/logdesk/common/api/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV_Plain(t *testing.T) {
	srv := fakeapi.Start(t, sampleRecords()...)
	c := client.New(srv.URL, 2*time.Second)
	dir := t.TempDir()

	path, n, err := exportCSV(context.Background(), c, map[string]string{"source": "network"}, filepath.Join(dir, "out.csv"), false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Contains(t, string(data), "id,timestamp,message,severity,source")
	assert.Contains(t, string(data), "network")
	assert.NotContains(t, string(data), "database")
}

func TestExportCSV_Zstd(t *testing.T) {
	srv := fakeapi.Start(t, sampleRecords()...)
	c := client.New(srv.URL, 2*time.Second)
	dir := t.TempDir()

	path, _, err := exportCSV(context.Background(), c, nil, filepath.Join(dir, "out.csv"), true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv.zst"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, dec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "connection reset")
}

func TestExportCSV_FailureRemovesFile(t *testing.T) {
	srv := fakeapi.Start(t)
	srv.Fail("GET", "/logs/download_csv/", fakeapi.Override{Status: 500, Body: `{"non_field_errors":["An unexpected error occurred while generating the CSV"]}`})
	c := client.New(srv.URL, 2*time.Second)
	dir := t.TempDir()

	path, _, err := exportCSV(context.Background(), c, nil, filepath.Join(dir, "out.csv"), false)
	require.Error(t, err)
	assert.NoFileExists(t, path)
	assert.Equal(t, "Failed to download CSV. Validation error: An unexpected error occurred while generating the CSV", exportMessage(err))
}

func TestExportCSV_FailureKeepsExistingFile(t *testing.T) {
	srv := fakeapi.Start(t)
	srv.Fail("GET", "/logs/download_csv/", fakeapi.Override{Status: 500, Body: `{"detail":"Internal server error"}`})
	c := client.New(srv.URL, 2*time.Second)
	dir := t.TempDir()
	target := filepath.Join(dir, "logs.csv")
	require.NoError(t, os.WriteFile(target, []byte("previous good export\n"), 0644))

	_, _, err := exportCSV(context.Background(), c, nil, target, false)
	require.Error(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous good export\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportCSV_ReplacesExistingFile(t *testing.T) {
	srv := fakeapi.Start(t, sampleRecords()...)
	c := client.New(srv.URL, 2*time.Second)
	dir := t.TempDir()
	target := filepath.Join(dir, "logs.csv")
	require.NoError(t, os.WriteFile(target, []byte("stale\n"), 0644))

	_, _, err := exportCSV(context.Background(), c, nil, target, false)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "id,timestamp,message,severity,source")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}
