package tfwire_aws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_RequiresAWSProvider(t *testing.T) {
	doc := NewDocument()

	data, err := ToJSON(doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	terraform := parsed["terraform"].(map[string]any)
	providers := terraform["required_providers"].(map[string]any)
	aws := providers["aws"].(map[string]any)
	assert.Equal(t, "hashicorp/aws", aws["source"])
	assert.Equal(t, DefaultProviderVersion, aws["version"])
}

func TestDocument_AddResource(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_kms_key", "data", map[string]any{
		"description": "data key",
	}))

	attrs, ok := doc.Resource("aws_kms_key", "data")
	require.True(t, ok)
	assert.Equal(t, "data key", attrs["description"])
	assert.Equal(t, 1, doc.ResourceCount())
}

func TestDocument_AddResourceDuplicate(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_sqs_queue", "jobs", map[string]any{}))
	err := doc.AddResource("aws_sqs_queue", "jobs", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource aws_sqs_queue.jobs")
}

func TestDocument_AddResourceInvalidName(t *testing.T) {
	doc := NewDocument()

	for _, name := range []string{"", "9lives", "has space", "dot.name"} {
		err := doc.AddResource("aws_sqs_queue", name, map[string]any{})
		assert.Error(t, err, "name %q", name)
	}
}

func TestDocument_AddData(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddData("aws_caller_identity", "current", nil))
	require.Error(t, doc.AddData("aws_caller_identity", "current", nil))
}

func TestDocument_AddVariableDuplicate(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddVariable("db_password", Variable{
		Type:      "string",
		Sensitive: true,
	}))
	err := doc.AddVariable("db_password", Variable{Type: "string"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate variable")
}

func TestDocument_ResourceAddresses(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_sqs_queue", "jobs", map[string]any{}))
	require.NoError(t, doc.AddResource("aws_kms_key", "data", map[string]any{}))
	require.NoError(t, doc.AddResource("aws_sqs_queue", "alerts", map[string]any{}))

	assert.Equal(t, []string{
		"aws_kms_key.data",
		"aws_sqs_queue.alerts",
		"aws_sqs_queue.jobs",
	}, doc.ResourceAddresses())
}

func TestDocument_ValidateResolvesReferences(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_kms_key", "data", map[string]any{}))
	require.NoError(t, doc.AddResource("aws_sqs_queue", "jobs", map[string]any{
		"kms_master_key_id": "${aws_kms_key.data.id}",
	}))

	assert.NoError(t, doc.Validate())
}

func TestDocument_ValidateUndefinedReference(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_sqs_queue", "jobs", map[string]any{
		"kms_master_key_id": "${aws_kms_key.missing.id}",
	}))

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aws_kms_key.missing")
}

func TestDocument_ValidateVariableReference(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_db_instance", "primary", map[string]any{
		"password": "${var.db_password}",
	}))

	err := doc.Validate()
	require.Error(t, err, "variable is not declared")

	require.NoError(t, doc.AddVariable("db_password", Variable{Type: "string", Sensitive: true}))
	assert.NoError(t, doc.Validate())
}

func TestDocument_MarshalJSON_OmitsEmptySections(t *testing.T) {
	doc := NewDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Contains(t, parsed, "terraform")
	assert.NotContains(t, parsed, "resource")
	assert.NotContains(t, parsed, "variable")
	assert.NotContains(t, parsed, "output")
	assert.NotContains(t, parsed, "locals")
}

func TestDocument_MarshalJSON_FullSections(t *testing.T) {
	doc := NewDocument()
	doc.SetRequiredVersion(">= 1.5")
	doc.AddProvider("aws", map[string]any{"region": "us-east-1"})
	doc.SetLocal("env", "prod")

	require.NoError(t, doc.AddResource("aws_s3_bucket", "logs", map[string]any{
		"bucket": "example-logs",
	}))
	require.NoError(t, doc.AddOutput("bucket_arn", Output{
		Value:       Ref("aws_s3_bucket", "logs", "arn"),
		Description: "log bucket ARN",
	}))

	data, err := ToJSON(doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	terraform := parsed["terraform"].(map[string]any)
	assert.Equal(t, ">= 1.5", terraform["required_version"])

	provider := parsed["provider"].(map[string]any)
	awsProvider := provider["aws"].(map[string]any)
	assert.Equal(t, "us-east-1", awsProvider["region"])

	outputs := parsed["output"].(map[string]any)
	bucketArn := outputs["bucket_arn"].(map[string]any)
	assert.Equal(t, "${aws_s3_bucket.logs.arn}", bucketArn["value"])

	locals := parsed["locals"].(map[string]any)
	assert.Equal(t, "prod", locals["env"])
}

func TestDocument_MultipleProviderBlocks(t *testing.T) {
	doc := NewDocument()
	doc.AddProvider("aws", map[string]any{"region": "us-east-1"})
	doc.AddProvider("aws", map[string]any{"region": "eu-west-1", "alias": "eu"})

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	provider := parsed["provider"].(map[string]any)
	blocks := provider["aws"].([]any)
	assert.Len(t, blocks, 2)
}

func TestDocument_GraphOrder(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.AddResource("aws_kms_key", "data", map[string]any{}))
	require.NoError(t, doc.AddResource("aws_s3_bucket", "logs", map[string]any{}))
	require.NoError(t, doc.AddResource("aws_sqs_queue", "jobs", map[string]any{
		"kms_master_key_id": "${aws_kms_key.data.id}",
	}))

	order, err := doc.Graph().Order()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[string]int, len(order))
	for i, addr := range order {
		pos[addr] = i
	}
	assert.Less(t, pos["aws_kms_key.data"], pos["aws_sqs_queue.jobs"])
}
