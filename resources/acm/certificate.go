// Package acm provides validated builders for AWS Certificate Manager
// Terraform resources.
package acm

import (
	"fmt"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Certificate describes an aws_acm_certificate resource, either requested
// through ACM (domain_name) or imported (certificate_body + private_key).
type Certificate struct {
	DomainName              string   `json:"domain_name,omitempty"`
	SubjectAlternativeNames []string `json:"subject_alternative_names,omitempty"`
	ValidationMethod        string   `json:"validation_method,omitempty"` // DNS or EMAIL

	// Imported certificates.
	CertificateBody  string `json:"certificate_body,omitempty"`
	PrivateKey       string `json:"private_key,omitempty"`
	CertificateChain string `json:"certificate_chain,omitempty"`

	KeyAlgorithm string `json:"key_algorithm,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (Certificate) ResourceType() string { return "aws_acm_certificate" }

func (c Certificate) isImport() bool { return c.CertificateBody != "" }

func (c *Certificate) applyDefaults() {
	if !c.isImport() && c.ValidationMethod == "" {
		c.ValidationMethod = "DNS"
	}
}

// Validate checks the certificate attributes. A certificate is either
// requested by domain name or imported from a body; the two modes are
// mutually exclusive.
func (c Certificate) Validate() error {
	var errs schema.Errors

	schema.ExactlyOneOf(&errs,
		[]string{"domain_name", "certificate_body"},
		[]bool{c.DomainName != "", c.CertificateBody != ""})

	if c.isImport() {
		schema.RequiredWhen(&errs, "private_key", "certificate_body is set", true, c.PrivateKey != "")
		schema.ForbiddenWhen(&errs, "validation_method", "the certificate is imported", true, c.ValidationMethod != "")
		schema.ForbiddenWhen(&errs, "subject_alternative_names", "the certificate is imported", true, len(c.SubjectAlternativeNames) > 0)
		schema.ForbiddenWhen(&errs, "key_algorithm", "the certificate is imported", true, c.KeyAlgorithm != "")
	} else {
		schema.OneOf(&errs, "validation_method", c.ValidationMethod, "DNS", "EMAIL")
		schema.ForbiddenWhen(&errs, "certificate_chain", "certificate_body is not set", true, c.CertificateChain != "")
		schema.ForbiddenWhen(&errs, "private_key", "certificate_body is not set", true, c.PrivateKey != "")
		checkDomain(&errs, "domain_name", c.DomainName)
		schema.StringLength(&errs, "domain_name", c.DomainName, 1, 253)
		for i, san := range c.SubjectAlternativeNames {
			field := fmt.Sprintf("subject_alternative_names[%d]", i)
			checkDomain(&errs, field, san)
			schema.StringLength(&errs, field, san, 1, 253)
		}
	}

	schema.OneOf(&errs, "key_algorithm", c.KeyAlgorithm,
		"RSA_2048", "RSA_3072", "RSA_4096", "EC_prime256v1", "EC_secp384r1", "EC_secp521r1")

	return errs.OrNil()
}

// checkDomain enforces ACM's wildcard rules on a requested domain:
// at most one wildcard, and only as the leftmost label. Interpolations
// are resolved by Terraform and skipped here.
func checkDomain(errs *schema.Errors, field, domain string) {
	if domain == "" || schema.IsInterpolation(domain) {
		return
	}
	if strings.HasPrefix(domain, "*.") {
		if strings.Contains(domain[2:], "*") {
			errs.Add(field, "%q may only use a single leading wildcard label", domain)
		}
	} else if strings.Contains(domain, "*") {
		errs.Add(field, "%q may only use a wildcard as the leftmost label", domain)
	}
}

// AddCertificate validates the attributes and attaches the certificate to
// the document.
func AddCertificate(doc *tfwire.Document, name string, c Certificate) (CertificateReference, error) {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return CertificateReference{}, fmt.Errorf("aws_acm_certificate.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(c)
	if err != nil {
		return CertificateReference{}, fmt.Errorf("aws_acm_certificate.%s: %w", name, err)
	}
	if err := doc.AddResource(c.ResourceType(), name, attrs); err != nil {
		return CertificateReference{}, err
	}

	return CertificateReference{Name: name, cert: c}, nil
}

// AddCertificateValidation declares an aws_acm_certificate_validation
// resource waiting on the given certificate. The fqdns list normally
// carries the validation record FQDNs created from
// domain_validation_options.
func AddCertificateValidation(doc *tfwire.Document, name string, cert CertificateReference, fqdns []string) error {
	if cert.cert.isImport() {
		return fmt.Errorf("aws_acm_certificate_validation.%s: imported certificates are not validated", name)
	}

	attrs := map[string]any{
		"certificate_arn": cert.Arn().String(),
	}
	if len(fqdns) > 0 {
		attrs["validation_record_fqdns"] = fqdns
	}
	return doc.AddResource("aws_acm_certificate_validation", name, attrs)
}

// CertificateReference is a handle to a declared aws_acm_certificate.
type CertificateReference struct {
	// Name is the symbolic resource name
	Name string

	cert Certificate
}

func (r CertificateReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_acm_certificate", r.Name, attr)
}

// Arn is the certificate ARN.
func (r CertificateReference) Arn() tfwire.Reference { return r.ref("arn") }

// DomainValidationOptions references the computed validation records.
func (r CertificateReference) DomainValidationOptions() tfwire.Reference {
	return r.ref("domain_validation_options")
}

// DomainName references the certificate's domain name.
func (r CertificateReference) DomainName() tfwire.Reference { return r.ref("domain_name") }

// Status references the certificate status.
func (r CertificateReference) Status() tfwire.Reference { return r.ref("status") }

// IsImported reports whether the certificate was imported rather than
// requested through ACM.
func (r CertificateReference) IsImported() bool { return r.cert.isImport() }

// IsWildcard reports whether the requested domain uses a wildcard label.
func (r CertificateReference) IsWildcard() bool {
	return strings.HasPrefix(r.cert.DomainName, "*.")
}
