package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
)

const cryptoRequest = `{"telegramContacts":[{"username":"trader","accountAge":5,"lastMessage":"Guaranteed profit with bitcoin"}]}`

func TestRunText(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-offline"}, strings.NewReader(cryptoRequest), &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "SHADOW CLEANER SCAN REPORT")
	assert.Contains(t, out.String(), "Score: ")
}

func TestRunJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-offline", "-format", "json"}, strings.NewReader(cryptoRequest), &out, &errOut)
	require.NoError(t, err)

	var resp models.ScanResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.NotEmpty(t, resp.ScanID)
	assert.Len(t, resp.Threats, 1)
	assert.Empty(t, resp.Exposures)
}

func TestRunMarkdownFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(cryptoRequest), 0o600))

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-offline", "-format", "markdown", "-in", path}, nil, &out, &errOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "# "))
}

func TestRunErrors(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"-format", "pdf"}, strings.NewReader(cryptoRequest), &out, &errOut)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-offline"}, strings.NewReader(""), &out, &errOut)
	assert.ErrorIs(t, err, models.ErrEmptyScanRequest)

	err = run(context.Background(), []string{"-offline"}, strings.NewReader("{}"), &out, &errOut)
	assert.ErrorIs(t, err, models.ErrEmptyScanRequest)

	err = run(context.Background(), []string{"-offline", "-in", "/nonexistent/req.json"}, nil, &out, &errOut)
	assert.Error(t, err)
}

func TestRunComparesWithPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	args := []string{"-offline", "-history", path}

	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), args, strings.NewReader(cryptoRequest), &out, &errOut))
	assert.NotContains(t, errOut.String(), "since")

	errOut.Reset()
	require.NoError(t, run(context.Background(), args, strings.NewReader(cryptoRequest), &out, &errOut))
	assert.Contains(t, errOut.String(), "score +0, 0 new threats, 0 resolved, 0 new exposures")
}
