// Package cognito provides validated builders for Amazon Cognito Terraform
// resources.
package cognito

import (
	"fmt"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// UserPoolClient describes an aws_cognito_user_pool_client resource.
type UserPoolClient struct {
	Name       string `json:"name"`
	UserPoolID string `json:"user_pool_id"`

	GenerateSecret bool `json:"generate_secret,omitempty"`

	ExplicitAuthFlows []string `json:"explicit_auth_flows,omitempty"`

	// Token validities are expressed in the unit configured in
	// TokenValidityUnits; the default unit is hours for access and id
	// tokens and days for refresh tokens.
	AccessTokenValidity  int `json:"access_token_validity,omitempty"`
	IDTokenValidity      int `json:"id_token_validity,omitempty"`
	RefreshTokenValidity int `json:"refresh_token_validity,omitempty"`

	TokenValidityUnits *TokenValidityUnits `json:"token_validity_units,omitempty"`

	AllowedOauthFlows               []string `json:"allowed_oauth_flows,omitempty"`
	AllowedOauthFlowsUserPoolClient bool     `json:"allowed_oauth_flows_user_pool_client,omitempty"`
	AllowedOauthScopes              []string `json:"allowed_oauth_scopes,omitempty"`
	CallbackUrls                    []string `json:"callback_urls,omitempty"`
	LogoutUrls                      []string `json:"logout_urls,omitempty"`
	SupportedIdentityProviders      []string `json:"supported_identity_providers,omitempty"`
	DefaultRedirectURI              string   `json:"default_redirect_uri,omitempty"`
	PreventUserExistenceErrors      string   `json:"prevent_user_existence_errors,omitempty"`
	EnableTokenRevocation           bool     `json:"enable_token_revocation,omitempty"`
	ReadAttributes                  []string `json:"read_attributes,omitempty"`
	WriteAttributes                 []string `json:"write_attributes,omitempty"`
}

// TokenValidityUnits selects the unit for each token validity attribute.
type TokenValidityUnits struct {
	AccessToken  string `json:"access_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ResourceType returns the Terraform type.
func (UserPoolClient) ResourceType() string { return "aws_cognito_user_pool_client" }

var validityUnits = []string{"seconds", "minutes", "hours", "days"}

// unit durations in minutes, for normalizing validity ranges.
var unitMinutes = map[string]int{
	"seconds": 0, // handled separately, sub-minute granularity
	"minutes": 1,
	"hours":   60,
	"days":    1440,
}

func minutesFor(value int, unit string) int {
	switch unit {
	case "seconds":
		return value / 60
	case "", "hours":
		return value * 60
	default:
		return value * unitMinutes[unit]
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// Validate checks the client attributes, including the scaled token
// validity ranges and the OAuth flow combination rules.
func (c UserPoolClient) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "name", c.Name != "")
	schema.StringLength(&errs, "name", c.Name, 1, 128)
	schema.Required(&errs, "user_pool_id", c.UserPoolID != "")

	schema.SubsetOf(&errs, "explicit_auth_flows", c.ExplicitAuthFlows,
		"ALLOW_ADMIN_USER_PASSWORD_AUTH", "ALLOW_CUSTOM_AUTH", "ALLOW_USER_PASSWORD_AUTH",
		"ALLOW_USER_SRP_AUTH", "ALLOW_USER_AUTH", "ALLOW_REFRESH_TOKEN_AUTH")

	if c.TokenValidityUnits != nil {
		schema.OneOf(&errs, "token_validity_units.access_token", c.TokenValidityUnits.AccessToken, validityUnits...)
		schema.OneOf(&errs, "token_validity_units.id_token", c.TokenValidityUnits.IDToken, validityUnits...)
		schema.OneOf(&errs, "token_validity_units.refresh_token", c.TokenValidityUnits.RefreshToken, validityUnits...)
	}

	// Access and id tokens must live between 5 minutes and 24 hours;
	// refresh tokens between 60 minutes and 10 years, and longer than the
	// access token.
	accessUnit, idUnit, refreshUnit := "hours", "hours", "days"
	if c.TokenValidityUnits != nil {
		if c.TokenValidityUnits.AccessToken != "" {
			accessUnit = c.TokenValidityUnits.AccessToken
		}
		if c.TokenValidityUnits.IDToken != "" {
			idUnit = c.TokenValidityUnits.IDToken
		}
		if c.TokenValidityUnits.RefreshToken != "" {
			refreshUnit = c.TokenValidityUnits.RefreshToken
		}
	}
	accessMinutes := minutesFor(c.AccessTokenValidity, accessUnit)
	if c.AccessTokenValidity != 0 && (accessMinutes < 5 || accessMinutes > 1440) {
		errs.Add("access_token_validity", "%d %s is outside the allowed range of 5 minutes to 24 hours", c.AccessTokenValidity, accessUnit)
	}
	if c.IDTokenValidity != 0 {
		if m := minutesFor(c.IDTokenValidity, idUnit); m < 5 || m > 1440 {
			errs.Add("id_token_validity", "%d %s is outside the allowed range of 5 minutes to 24 hours", c.IDTokenValidity, idUnit)
		}
	}
	if c.RefreshTokenValidity != 0 {
		refreshMinutes := minutesFor(c.RefreshTokenValidity, refreshUnit)
		if refreshMinutes < 60 || refreshMinutes > 3650*1440 {
			errs.Add("refresh_token_validity", "%d %s is outside the allowed range of 60 minutes to 10 years", c.RefreshTokenValidity, refreshUnit)
		} else if c.AccessTokenValidity != 0 && refreshMinutes <= accessMinutes {
			errs.Add("refresh_token_validity", "must be longer than access_token_validity")
		}
	}

	schema.SubsetOf(&errs, "allowed_oauth_flows", c.AllowedOauthFlows, "code", "implicit", "client_credentials")
	hasCode := contains(c.AllowedOauthFlows, "code")
	hasImplicit := contains(c.AllowedOauthFlows, "implicit")
	hasClientCredentials := contains(c.AllowedOauthFlows, "client_credentials")

	if hasClientCredentials && (hasCode || hasImplicit) {
		errs.Add("allowed_oauth_flows", "client_credentials cannot be combined with code or implicit")
	}
	schema.RequiredWhen(&errs, "callback_urls", "allowed_oauth_flows includes code or implicit",
		hasCode || hasImplicit, len(c.CallbackUrls) > 0)
	schema.ForbiddenWhen(&errs, "callback_urls", "allowed_oauth_flows includes client_credentials",
		hasClientCredentials, len(c.CallbackUrls) > 0)
	schema.RequiredWhen(&errs, "generate_secret", "allowed_oauth_flows includes client_credentials",
		hasClientCredentials, c.GenerateSecret)
	schema.RequiredWhen(&errs, "allowed_oauth_flows_user_pool_client", "allowed_oauth_flows is set",
		len(c.AllowedOauthFlows) > 0, c.AllowedOauthFlowsUserPoolClient)

	if c.DefaultRedirectURI != "" && !contains(c.CallbackUrls, c.DefaultRedirectURI) {
		errs.Add("default_redirect_uri", "%q must be listed in callback_urls", c.DefaultRedirectURI)
	}
	schema.OneOf(&errs, "prevent_user_existence_errors", c.PreventUserExistenceErrors, "ENABLED", "LEGACY")

	return errs.OrNil()
}

// AddUserPoolClient validates the attributes and attaches the client to
// the document.
func AddUserPoolClient(doc *tfwire.Document, name string, c UserPoolClient) (UserPoolClientReference, error) {
	if err := c.Validate(); err != nil {
		return UserPoolClientReference{}, fmt.Errorf("aws_cognito_user_pool_client.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(c)
	if err != nil {
		return UserPoolClientReference{}, fmt.Errorf("aws_cognito_user_pool_client.%s: %w", name, err)
	}
	if err := doc.AddResource(c.ResourceType(), name, attrs); err != nil {
		return UserPoolClientReference{}, err
	}

	return UserPoolClientReference{Name: name, client: c}, nil
}

// UserPoolClientReference is a handle to a declared
// aws_cognito_user_pool_client.
type UserPoolClientReference struct {
	// Name is the symbolic resource name
	Name string

	client UserPoolClient
}

func (r UserPoolClientReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_cognito_user_pool_client", r.Name, attr)
}

// ID is the client ID.
func (r UserPoolClientReference) ID() tfwire.Reference { return r.ref("id") }

// ClientSecret is the generated client secret. Only present when
// generate_secret is set.
func (r UserPoolClientReference) ClientSecret() tfwire.Reference { return r.ref("client_secret") }

// HasSecret reports whether the client was declared with a secret.
func (r UserPoolClientReference) HasSecret() bool { return r.client.GenerateSecret }

// UsesOAuth reports whether any OAuth flow is enabled.
func (r UserPoolClientReference) UsesOAuth() bool {
	return r.client.AllowedOauthFlowsUserPoolClient && len(r.client.AllowedOauthFlows) > 0
}
