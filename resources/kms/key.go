// Package kms provides validated builders for AWS KMS Terraform resources.
package kms

import (
	"fmt"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Key describes an aws_kms_key resource.
type Key struct {
	Description           string `json:"description,omitempty"`
	DeletionWindowInDays  int    `json:"deletion_window_in_days,omitempty"`
	KeyUsage              string `json:"key_usage,omitempty"`
	CustomerMasterKeySpec string `json:"customer_master_key_spec,omitempty"`
	EnableKeyRotation     bool   `json:"enable_key_rotation,omitempty"`
	RotationPeriodInDays  int    `json:"rotation_period_in_days,omitempty"`
	IsEnabled             bool   `json:"is_enabled,omitempty"`
	MultiRegion           bool   `json:"multi_region,omitempty"`
	Policy                string `json:"policy,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (Key) ResourceType() string { return "aws_kms_key" }

var keySpecs = []string{
	"SYMMETRIC_DEFAULT",
	"RSA_2048", "RSA_3072", "RSA_4096",
	"ECC_NIST_P256", "ECC_NIST_P384", "ECC_NIST_P521", "ECC_SECG_P256K1",
	"HMAC_224", "HMAC_256", "HMAC_384", "HMAC_512",
	"SM2",
}

// IsSymmetric reports whether the key spec is the symmetric default.
func (k Key) IsSymmetric() bool {
	return k.CustomerMasterKeySpec == "SYMMETRIC_DEFAULT"
}

func (k *Key) applyDefaults() {
	if k.DeletionWindowInDays == 0 {
		k.DeletionWindowInDays = 30
	}
	if k.KeyUsage == "" {
		k.KeyUsage = "ENCRYPT_DECRYPT"
	}
	if k.CustomerMasterKeySpec == "" {
		k.CustomerMasterKeySpec = "SYMMETRIC_DEFAULT"
	}
}

// Validate checks the key attributes.
func (k Key) Validate() error {
	var errs schema.Errors

	schema.IntBetween(&errs, "deletion_window_in_days", k.DeletionWindowInDays, 7, 30)
	schema.OneOf(&errs, "key_usage", k.KeyUsage, "ENCRYPT_DECRYPT", "SIGN_VERIFY", "GENERATE_VERIFY_MAC")
	schema.OneOf(&errs, "customer_master_key_spec", k.CustomerMasterKeySpec, keySpecs...)

	asymmetric := strings.HasPrefix(k.CustomerMasterKeySpec, "RSA_") ||
		strings.HasPrefix(k.CustomerMasterKeySpec, "ECC_") ||
		k.CustomerMasterKeySpec == "SM2"
	mac := strings.HasPrefix(k.CustomerMasterKeySpec, "HMAC_")

	switch k.KeyUsage {
	case "SIGN_VERIFY":
		if !asymmetric {
			errs.Add("customer_master_key_spec", "%q cannot be used for SIGN_VERIFY; use an RSA_, ECC_ or SM2 spec", k.CustomerMasterKeySpec)
		}
	case "GENERATE_VERIFY_MAC":
		if !mac {
			errs.Add("customer_master_key_spec", "%q cannot be used for GENERATE_VERIFY_MAC; use an HMAC_ spec", k.CustomerMasterKeySpec)
		}
	case "ENCRYPT_DECRYPT":
		if mac {
			errs.Add("customer_master_key_spec", "HMAC keys cannot be used for ENCRYPT_DECRYPT")
		}
	}

	rotatable := k.IsSymmetric() && k.KeyUsage == "ENCRYPT_DECRYPT"
	schema.ForbiddenWhen(&errs, "enable_key_rotation", "the key is not a symmetric encryption key", !rotatable, k.EnableKeyRotation)
	schema.RequiredWhen(&errs, "enable_key_rotation", "rotation_period_in_days is set", k.RotationPeriodInDays != 0, k.EnableKeyRotation)
	if k.RotationPeriodInDays != 0 {
		schema.IntBetween(&errs, "rotation_period_in_days", k.RotationPeriodInDays, 90, 2560)
	}

	return errs.OrNil()
}

// AddKey validates the attributes and attaches an aws_kms_key block to the
// document.
func AddKey(doc *tfwire.Document, name string, k Key) (KeyReference, error) {
	k.applyDefaults()
	if err := k.Validate(); err != nil {
		return KeyReference{}, fmt.Errorf("aws_kms_key.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(k)
	if err != nil {
		return KeyReference{}, fmt.Errorf("aws_kms_key.%s: %w", name, err)
	}
	if err := doc.AddResource(k.ResourceType(), name, attrs); err != nil {
		return KeyReference{}, err
	}

	return KeyReference{Name: name, key: k}, nil
}

// AddKeyWithAlias attaches the key plus an aws_kms_alias pointing at it.
// The alias must carry the "alias/" prefix and must not use the reserved
// "alias/aws/" namespace.
func AddKeyWithAlias(doc *tfwire.Document, name, alias string, k Key) (KeyReference, error) {
	var errs schema.Errors
	if !strings.HasPrefix(alias, "alias/") {
		errs.Add("name", "%q must start with \"alias/\"", alias)
	}
	if strings.HasPrefix(alias, "alias/aws/") {
		errs.Add("name", "the \"alias/aws/\" prefix is reserved for AWS managed keys")
	}
	if errs.Len() > 0 {
		return KeyReference{}, fmt.Errorf("aws_kms_alias.%s: %w", name, errs.OrNil())
	}

	ref, err := AddKey(doc, name, k)
	if err != nil {
		return KeyReference{}, err
	}

	err = doc.AddResource("aws_kms_alias", name, map[string]any{
		"name":          alias,
		"target_key_id": ref.KeyID().String(),
	})
	if err != nil {
		return KeyReference{}, err
	}
	return ref, nil
}

// KeyReference is a handle to a declared aws_kms_key.
type KeyReference struct {
	// Name is the symbolic resource name
	Name string

	key Key
}

func (r KeyReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_kms_key", r.Name, attr)
}

// KeyID is the globally unique key identifier.
func (r KeyReference) KeyID() tfwire.Reference { return r.ref("key_id") }

// Arn is the key ARN.
func (r KeyReference) Arn() tfwire.Reference { return r.ref("arn") }

// IsSymmetric reports whether the declared key spec is symmetric.
func (r KeyReference) IsSymmetric() bool { return r.key.IsSymmetric() }

// MonthlyCostEstimate returns the flat monthly key charge in USD.
func (r KeyReference) MonthlyCostEstimate() float64 {
	return 1.0
}
