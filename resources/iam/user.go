// Package iam provides validated builders for AWS IAM Terraform resources.
package iam

import (
	"fmt"
	"regexp"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/interp"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// User describes an aws_iam_user resource.
type User struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`

	// PermissionsBoundary is the ARN of a managed policy bounding the
	// user's effective permissions.
	PermissionsBoundary string `json:"permissions_boundary,omitempty"`

	ForceDestroy bool `json:"force_destroy,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (User) ResourceType() string { return "aws_iam_user" }

var userNameRE = regexp.MustCompile(`^[\w+=,.@-]+$`)

func (u *User) applyDefaults() {
	if u.Path == "" {
		u.Path = "/"
	}
}

// Validate checks the user attributes.
func (u User) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "name", u.Name != "")
	schema.StringLength(&errs, "name", u.Name, 1, 64)
	schema.MatchesRE(&errs, "name", u.Name, userNameRE,
		"may only contain letters, digits, and +=,.@-_")
	if u.Path != "" && (!strings.HasPrefix(u.Path, "/") || !strings.HasSuffix(u.Path, "/")) {
		errs.Add("path", "%q must begin and end with /", u.Path)
	}
	schema.StringLength(&errs, "path", u.Path, 1, 512)
	schema.ValidARN(&errs, "permissions_boundary", u.PermissionsBoundary)

	return errs.OrNil()
}

// AddUser validates the attributes and attaches the user to the document.
func AddUser(doc *tfwire.Document, name string, u User) (UserReference, error) {
	u.applyDefaults()
	if err := u.Validate(); err != nil {
		return UserReference{}, fmt.Errorf("aws_iam_user.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(u)
	if err != nil {
		return UserReference{}, fmt.Errorf("aws_iam_user.%s: %w", name, err)
	}
	if err := doc.AddResource(u.ResourceType(), name, attrs); err != nil {
		return UserReference{}, err
	}

	return UserReference{Name: name, user: u}, nil
}

// AddUserWithPolicy declares the user together with an inline
// aws_iam_user_policy carrying the given policy document.
func AddUserWithPolicy(doc *tfwire.Document, name string, u User, policy interp.PolicyDocument) (UserReference, error) {
	if err := policy.Validate(); err != nil {
		return UserReference{}, fmt.Errorf("aws_iam_user_policy.%s: %w", name, err)
	}

	ref, err := AddUser(doc, name, u)
	if err != nil {
		return UserReference{}, err
	}

	rendered, err := policy.Render()
	if err != nil {
		return UserReference{}, fmt.Errorf("aws_iam_user_policy.%s: %w", name, err)
	}
	err = doc.AddResource("aws_iam_user_policy", name, map[string]any{
		"name":   name,
		"user":   ref.UserName().String(),
		"policy": rendered,
	})
	if err != nil {
		return UserReference{}, err
	}

	return ref, nil
}

// UserReference is a handle to a declared aws_iam_user.
type UserReference struct {
	// Name is the symbolic resource name
	Name string

	user User
}

func (r UserReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_iam_user", r.Name, attr)
}

// Arn is the user ARN.
func (r UserReference) Arn() tfwire.Reference { return r.ref("arn") }

// UserName is the user name attribute.
func (r UserReference) UserName() tfwire.Reference { return r.ref("name") }

// UniqueID is the stable unique identifier assigned by IAM.
func (r UserReference) UniqueID() tfwire.Reference { return r.ref("unique_id") }

// HasPermissionsBoundary reports whether a permissions boundary is set.
func (r UserReference) HasPermissionsBoundary() bool {
	return r.user.PermissionsBoundary != ""
}
