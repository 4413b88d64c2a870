package manifest

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadAndBuildStack(t *testing.T) {
	m, err := Load("testdata/stack.yaml")
	require.NoError(t, err)
	assert.Equal(t, "app", m.Name)
	require.Len(t, m.Resources, 3)

	doc, err := m.Build(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, doc.ResourceCount())

	queue, ok := doc.Resource("aws_sqs_queue", "jobs")
	require.True(t, ok)
	assert.Equal(t, "app-jobs", queue["name"])

	db, ok := doc.Resource("aws_db_instance", "primary")
	require.True(t, ok)
	assert.Equal(t, "${aws_kms_key.data.arn}", db["kms_key_id"])

	// the manifest wires real dependencies, so the document validates
	require.NoError(t, doc.Validate())

	order, err := doc.Graph().Order()
	require.NoError(t, err)
	assert.Less(t, indexOf(order, "aws_kms_key.data"), indexOf(order, "aws_db_instance.primary"))
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

func TestParseRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "resources:\n  - kind: kms_key\n    name: data\n",
			wantErr: "name is required",
		},
		{
			name:    "no resources",
			yaml:    "name: app\n",
			wantErr: "no resources declared",
		},
		{
			name:    "resource without kind",
			yaml:    "name: app\nresources:\n  - name: data\n",
			wantErr: "kind is required",
		},
		{
			name:    "resource without name",
			yaml:    "name: app\nresources:\n  - kind: kms_key\n",
			wantErr: "name is required",
		},
		{
			name:    "invalid yaml",
			yaml:    "name: [unclosed",
			wantErr: "parsing manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	m := &Manifest{
		Name:      "app",
		Resources: []Resource{{Kind: "dynamodb_table", Name: "state"}},
	}

	_, err := m.Build(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported kind "dynamodb_table"`)
}

func TestBuildPropagatesResourceValidation(t *testing.T) {
	m := &Manifest{
		Name: "app",
		Resources: []Resource{{
			Kind: "sqs_queue",
			Name: "jobs",
			Attributes: map[string]any{
				"name":       "app-jobs.fifo",
				"fifo_queue": false,
			},
		}},
	}

	_, err := m.Build(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sqs_queue "jobs"`)
	assert.Contains(t, err.Error(), ".fifo")
}
