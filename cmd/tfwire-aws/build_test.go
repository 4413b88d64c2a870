package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentFromManifest(t *testing.T) {
	doc, err := buildDocument("testdata/stack.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.ResourceCount())
}

func TestBuildDocumentMissingFile(t *testing.T) {
	_, err := buildDocument("testdata/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")
}

func TestRunBuildWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "main.tf.json")

	require.NoError(t, runBuild("testdata/stack.yaml", "json", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(data, &config))

	resources := config["resource"].(map[string]any)
	assert.Contains(t, resources, "aws_kms_key")
	assert.Contains(t, resources, "aws_sqs_queue")
}

func TestRunBuildWritesHCL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "main.tf")

	require.NoError(t, runBuild("testdata/stack.yaml", "hcl", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `resource "aws_sqs_queue" "jobs"`)
	assert.Contains(t, string(data), "aws_kms_key.app.id")
}

func TestRunBuildUnknownFormat(t *testing.T) {
	err := runBuild("testdata/stack.yaml", "toml", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRunGraphWritesDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "stack.dot")

	require.NoError(t, runGraph("testdata/stack.yaml", "dot", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "aws_sqs_queue.jobs")
	assert.Contains(t, text, "aws_kms_key.app")
}

func TestGetVersionDefaultsToDev(t *testing.T) {
	if version != "" {
		t.Skip("version injected via ldflags")
	}
	v := getVersion()
	assert.True(t, v == "dev" || strings.HasPrefix(v, "v"))
}
