package kms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

func TestAddKeyDefaults(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddKey(doc, "data", Key{Description: "data at rest"})
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_kms_key", "data")
	require.True(t, ok)

	assert.EqualValues(t, 30, attrs["deletion_window_in_days"])
	assert.Equal(t, "ENCRYPT_DECRYPT", attrs["key_usage"])
	assert.Equal(t, "SYMMETRIC_DEFAULT", attrs["customer_master_key_spec"])
	assert.True(t, ref.IsSymmetric())
	assert.Equal(t, "${aws_kms_key.data.arn}", ref.Arn().String())
	assert.Equal(t, 1.0, ref.MonthlyCostEstimate())
}

func TestKeyUsageSpecRules(t *testing.T) {
	tests := []struct {
		name    string
		in      Key
		wantErr string
	}{
		{
			name:    "deletion window too short",
			in:      Key{DeletionWindowInDays: 3},
			wantErr: "deletion_window_in_days",
		},
		{
			name:    "sign verify needs asymmetric spec",
			in:      Key{KeyUsage: "SIGN_VERIFY"},
			wantErr: "cannot be used for SIGN_VERIFY",
		},
		{
			name:    "mac usage needs hmac spec",
			in:      Key{KeyUsage: "GENERATE_VERIFY_MAC", CustomerMasterKeySpec: "RSA_2048"},
			wantErr: "cannot be used for GENERATE_VERIFY_MAC",
		},
		{
			name:    "hmac spec cannot encrypt",
			in:      Key{CustomerMasterKeySpec: "HMAC_256"},
			wantErr: "HMAC keys cannot be used for ENCRYPT_DECRYPT",
		},
		{
			name:    "rotation only for symmetric encryption keys",
			in:      Key{KeyUsage: "SIGN_VERIFY", CustomerMasterKeySpec: "ECC_NIST_P256", EnableKeyRotation: true},
			wantErr: "enable_key_rotation",
		},
		{
			name:    "rotation period needs rotation enabled",
			in:      Key{RotationPeriodInDays: 180},
			wantErr: "enable_key_rotation: required when rotation_period_in_days is set",
		},
		{
			name: "valid signing key",
			in:   Key{KeyUsage: "SIGN_VERIFY", CustomerMasterKeySpec: "ECC_NIST_P384"},
		},
		{
			name: "valid rotating key",
			in:   Key{EnableKeyRotation: true, RotationPeriodInDays: 365},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddKey(tfwire.NewDocument(), "k", tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddKeyWithAlias(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddKeyWithAlias(doc, "data", "alias/app-data", Key{})
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_kms_alias", "data")
	require.True(t, ok)
	assert.Equal(t, "alias/app-data", attrs["name"])
	assert.Equal(t, ref.KeyID().String(), attrs["target_key_id"])

	_, err = AddKeyWithAlias(doc, "bad", "app-data", Key{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `must start with "alias/"`)

	_, err = AddKeyWithAlias(doc, "reserved", "alias/aws/s3", Key{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}
