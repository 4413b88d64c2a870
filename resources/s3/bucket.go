// Package s3 provides validated builders for Amazon S3 Terraform resources.
//
// AddBucket emits the aws_s3_bucket block together with an
// aws_s3_bucket_public_access_block, and optional versioning and
// server-side-encryption configuration blocks, following the provider's
// split-resource model.
package s3

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Bucket describes an aws_s3_bucket resource and the auxiliary blocks
// AddBucket derives from it.
type Bucket struct {
	Bucket       string `json:"bucket,omitempty"`
	BucketPrefix string `json:"bucket_prefix,omitempty"`
	ForceDestroy bool   `json:"force_destroy,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`

	// PublicAccess controls the aws_s3_bucket_public_access_block.
	// Nil means fully locked down.
	PublicAccess *PublicAccess `json:"-"`
	// Versioning, when set, emits aws_s3_bucket_versioning.
	Versioning *Versioning `json:"-"`
	// Encryption, when set, emits
	// aws_s3_bucket_server_side_encryption_configuration.
	Encryption *Encryption `json:"-"`
}

// PublicAccess mirrors the four aws_s3_bucket_public_access_block toggles.
type PublicAccess struct {
	BlockPublicAcls       bool `json:"block_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	IgnorePublicAcls      bool `json:"ignore_public_acls"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

// Versioning configures the aws_s3_bucket_versioning resource.
type Versioning struct {
	Status string `json:"status"` // Enabled or Suspended
}

// Encryption configures server-side encryption.
type Encryption struct {
	SSEAlgorithm   string `json:"sse_algorithm"` // AES256, aws:kms, aws:kms:dsse
	KmsMasterKeyID string `json:"kms_master_key_id,omitempty"`
	BucketKey      bool   `json:"-"`
}

// ResourceType returns the Terraform type.
func (Bucket) ResourceType() string { return "aws_s3_bucket" }

var bucketNameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)

// checkBucketName implements the S3 bucket naming rules.
func checkBucketName(errs *schema.Errors, name string) {
	schema.StringLength(errs, "bucket", name, 3, 63)
	schema.MatchesRE(errs, "bucket", name, bucketNameRE,
		"must use lowercase letters, digits, dots and hyphens, starting and ending with a letter or digit")
	if strings.Contains(name, "..") {
		errs.Add("bucket", "%q must not contain consecutive dots", name)
	}
	if addr, err := netip.ParseAddr(name); err == nil && addr.Is4() {
		errs.Add("bucket", "%q must not be formatted like an IP address", name)
	}
	if strings.HasPrefix(name, "xn--") {
		errs.Add("bucket", "%q must not start with the reserved prefix xn--", name)
	}
	if strings.HasSuffix(name, "-s3alias") {
		errs.Add("bucket", "%q must not end with the reserved suffix -s3alias", name)
	}
}

// Validate checks the bucket attributes.
func (b Bucket) Validate() error {
	var errs schema.Errors

	schema.ConflictsWith(&errs, "bucket", "bucket_prefix", b.Bucket != "" && b.BucketPrefix != "")
	if b.Bucket != "" && !schema.IsInterpolation(b.Bucket) {
		checkBucketName(&errs, b.Bucket)
	}
	if b.BucketPrefix != "" {
		schema.StringLength(&errs, "bucket_prefix", b.BucketPrefix, 1, 37)
	}

	if b.Versioning != nil {
		schema.OneOf(&errs, "versioning.status", b.Versioning.Status, "Enabled", "Suspended")
		schema.Required(&errs, "versioning.status", b.Versioning.Status != "")
	}
	if b.Encryption != nil {
		schema.Required(&errs, "encryption.sse_algorithm", b.Encryption.SSEAlgorithm != "")
		schema.OneOf(&errs, "encryption.sse_algorithm", b.Encryption.SSEAlgorithm, "AES256", "aws:kms", "aws:kms:dsse")
		schema.ForbiddenWhen(&errs, "encryption.kms_master_key_id", "sse_algorithm is AES256",
			b.Encryption.SSEAlgorithm == "AES256", b.Encryption.KmsMasterKeyID != "")
	}

	return errs.OrNil()
}

// AddBucket validates the attributes and attaches the aws_s3_bucket block
// plus its auxiliary resources to the document. The public access block is
// always emitted; a nil PublicAccess locks the bucket down completely.
func AddBucket(doc *tfwire.Document, name string, b Bucket) (BucketReference, error) {
	if err := b.Validate(); err != nil {
		return BucketReference{}, fmt.Errorf("aws_s3_bucket.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(b)
	if err != nil {
		return BucketReference{}, fmt.Errorf("aws_s3_bucket.%s: %w", name, err)
	}
	if err := doc.AddResource(b.ResourceType(), name, attrs); err != nil {
		return BucketReference{}, err
	}

	ref := BucketReference{Name: name, bucket: b}

	access := b.PublicAccess
	if access == nil {
		access = &PublicAccess{
			BlockPublicAcls:       true,
			BlockPublicPolicy:     true,
			IgnorePublicAcls:      true,
			RestrictPublicBuckets: true,
		}
	}
	err = doc.AddResource("aws_s3_bucket_public_access_block", name, map[string]any{
		"bucket":                  ref.ID().String(),
		"block_public_acls":       access.BlockPublicAcls,
		"block_public_policy":     access.BlockPublicPolicy,
		"ignore_public_acls":      access.IgnorePublicAcls,
		"restrict_public_buckets": access.RestrictPublicBuckets,
	})
	if err != nil {
		return BucketReference{}, err
	}

	if b.Versioning != nil {
		err = doc.AddResource("aws_s3_bucket_versioning", name, map[string]any{
			"bucket": ref.ID().String(),
			"versioning_configuration": map[string]any{
				"status": b.Versioning.Status,
			},
		})
		if err != nil {
			return BucketReference{}, err
		}
	}

	if b.Encryption != nil {
		rule := map[string]any{
			"apply_server_side_encryption_by_default": map[string]any{
				"sse_algorithm": b.Encryption.SSEAlgorithm,
			},
		}
		if b.Encryption.KmsMasterKeyID != "" {
			rule["apply_server_side_encryption_by_default"].(map[string]any)["kms_master_key_id"] = b.Encryption.KmsMasterKeyID
		}
		if b.Encryption.BucketKey {
			rule["bucket_key_enabled"] = true
		}
		err = doc.AddResource("aws_s3_bucket_server_side_encryption_configuration", name, map[string]any{
			"bucket": ref.ID().String(),
			"rule":   rule,
		})
		if err != nil {
			return BucketReference{}, err
		}
	}

	return ref, nil
}

// BucketReference is a handle to a declared aws_s3_bucket.
type BucketReference struct {
	// Name is the symbolic resource name
	Name string

	bucket Bucket
}

func (r BucketReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_s3_bucket", r.Name, attr)
}

// ID is the bucket name.
func (r BucketReference) ID() tfwire.Reference { return r.ref("id") }

// Arn is the bucket ARN.
func (r BucketReference) Arn() tfwire.Reference { return r.ref("arn") }

// BucketDomainName is the global bucket domain name.
func (r BucketReference) BucketDomainName() tfwire.Reference { return r.ref("bucket_domain_name") }

// BucketRegionalDomainName is the region-specific domain name.
func (r BucketReference) BucketRegionalDomainName() tfwire.Reference {
	return r.ref("bucket_regional_domain_name")
}

// WebsiteEndpoint is the static-website endpoint.
func (r BucketReference) WebsiteEndpoint() tfwire.Reference { return r.ref("website_endpoint") }

// IsVersioned reports whether versioning was declared Enabled.
func (r BucketReference) IsVersioned() bool {
	return r.bucket.Versioning != nil && r.bucket.Versioning.Status == "Enabled"
}
