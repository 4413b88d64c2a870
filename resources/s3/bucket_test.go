package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

func TestBucketNameRules(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr string
	}{
		{name: "valid", bucket: "app-artifacts"},
		{name: "valid with dots", bucket: "logs.example.com"},
		{name: "too short", bucket: "ab", wantErr: "length 2 is not in the range 3..63"},
		{name: "uppercase", bucket: "MyBucket", wantErr: "lowercase"},
		{name: "consecutive dots", bucket: "a..b", wantErr: "consecutive dots"},
		{name: "ip address", bucket: "192.168.0.1", wantErr: "IP address"},
		{name: "xn prefix", bucket: "xn--bucket", wantErr: "xn--"},
		{name: "s3alias suffix", bucket: "data-s3alias", wantErr: "-s3alias"},
		{name: "leading hyphen", bucket: "-bucket", wantErr: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Bucket{Bucket: tt.bucket}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBucketValidate(t *testing.T) {
	t.Run("bucket conflicts with bucket_prefix", func(t *testing.T) {
		err := Bucket{Bucket: "app-data", BucketPrefix: "app-"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicts with bucket_prefix")
	})

	t.Run("interpolated name skips naming rules", func(t *testing.T) {
		err := Bucket{Bucket: "${var.bucket_name}"}.Validate()
		assert.NoError(t, err)
	})

	t.Run("versioning status enum", func(t *testing.T) {
		err := Bucket{Bucket: "app-data", Versioning: &Versioning{Status: "On"}}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"On" is not one of`)
	})

	t.Run("sse algorithm enum", func(t *testing.T) {
		err := Bucket{Bucket: "app-data", Encryption: &Encryption{SSEAlgorithm: "kms"}}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"kms" is not one of`)
	})

	t.Run("kms key forbidden for AES256", func(t *testing.T) {
		err := Bucket{
			Bucket:     "app-data",
			Encryption: &Encryption{SSEAlgorithm: "AES256", KmsMasterKeyID: "${aws_kms_key.app.arn}"},
		}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sse_algorithm is AES256")
	})
}

func TestAddBucketEmitsPublicAccessBlock(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddBucket(doc, "artifacts", Bucket{Bucket: "app-artifacts"})
	require.NoError(t, err)

	block, ok := doc.Resource("aws_s3_bucket_public_access_block", "artifacts")
	require.True(t, ok)
	assert.Equal(t, true, block["block_public_acls"])
	assert.Equal(t, true, block["restrict_public_buckets"])
	assert.Equal(t, "${aws_s3_bucket.artifacts.id}", block["bucket"])

	assert.Equal(t, "${aws_s3_bucket.artifacts.arn}", ref.Arn().String())
	assert.False(t, ref.IsVersioned())
}

func TestAddBucketVersioningAndEncryption(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddBucket(doc, "artifacts", Bucket{
		Bucket:     "app-artifacts",
		Versioning: &Versioning{Status: "Enabled"},
		Encryption: &Encryption{SSEAlgorithm: "aws:kms", KmsMasterKeyID: "${aws_kms_key.app.arn}"},
	})
	require.NoError(t, err)
	assert.True(t, ref.IsVersioned())

	v, ok := doc.Resource("aws_s3_bucket_versioning", "artifacts")
	require.True(t, ok)
	cfg := v["versioning_configuration"].(map[string]any)
	assert.Equal(t, "Enabled", cfg["status"])

	enc, ok := doc.Resource("aws_s3_bucket_server_side_encryption_configuration", "artifacts")
	require.True(t, ok)
	rule := enc["rule"].(map[string]any)
	def := rule["apply_server_side_encryption_by_default"].(map[string]any)
	assert.Equal(t, "aws:kms", def["sse_algorithm"])
	assert.Equal(t, "${aws_kms_key.app.arn}", def["kms_master_key_id"])
}

func TestAddBucketRelaxedPublicAccess(t *testing.T) {
	doc := tfwire.NewDocument()

	_, err := AddBucket(doc, "site", Bucket{
		Bucket:       "app-site",
		PublicAccess: &PublicAccess{BlockPublicAcls: true},
	})
	require.NoError(t, err)

	block, ok := doc.Resource("aws_s3_bucket_public_access_block", "site")
	require.True(t, ok)
	assert.Equal(t, true, block["block_public_acls"])
	assert.Equal(t, false, block["block_public_policy"])
}
