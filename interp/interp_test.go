package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

func TestVar(t *testing.T) {
	assert.Equal(t, "${var.environment}", Var("environment"))
}

func TestLocal(t *testing.T) {
	assert.Equal(t, "${local.prefix}", Local("prefix"))
}

func TestData(t *testing.T) {
	assert.Equal(t, "${data.aws_region.current.name}", Data("aws_region", "current", "name"))
}

func TestFormat(t *testing.T) {
	ref := tfwire.Ref("aws_s3_bucket", "logs", "arn")
	assert.Equal(t, "${aws_s3_bucket.logs.arn}/*", Format("%s/*", ref))
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, List("a", "b"))
	assert.Equal(t, []int{1}, List(1))
}

func TestAny(t *testing.T) {
	assert.Equal(t, []any{"s3:GetObject", "s3:PutObject"}, Any("s3:GetObject", "s3:PutObject"))
}

func TestDeclareStandardData(t *testing.T) {
	doc := tfwire.NewDocument()
	require.NoError(t, DeclareStandardData(doc))

	// account context interpolations resolve against the declared data sources
	require.NoError(t, doc.AddResource("aws_s3_bucket", "logs", map[string]any{
		"bucket": Format("logs-%s-%s", CurrentAccountID, CurrentRegion),
	}))
	assert.NoError(t, doc.Validate())

	// declaring twice is an error
	require.Error(t, DeclareStandardData(doc))
}
