// Package ec2 provides validated builders for EC2 networking Terraform
// resources.
package ec2

import (
	"fmt"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// SecurityGroup describes an aws_security_group resource with inline
// ingress and egress rules.
type SecurityGroup struct {
	Name        string `json:"name,omitempty"`
	NamePrefix  string `json:"name_prefix,omitempty"`
	Description string `json:"description,omitempty"`
	VpcID       string `json:"vpc_id"`

	Ingress []Rule `json:"ingress,omitempty"`
	Egress  []Rule `json:"egress,omitempty"`

	RevokeRulesOnDelete bool `json:"revoke_rules_on_delete,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// Rule is one inline ingress or egress rule. Protocol "-1" means all
// traffic; its ports must both be 0.
type Rule struct {
	Description string `json:"description,omitempty"`
	FromPort    int    `json:"from_port"`
	ToPort      int    `json:"to_port"`
	Protocol    string `json:"protocol"`

	CidrBlocks     []string `json:"cidr_blocks,omitempty"`
	Ipv6CidrBlocks []string `json:"ipv6_cidr_blocks,omitempty"`
	SecurityGroups []string `json:"security_groups,omitempty"`
	PrefixListIDs  []string `json:"prefix_list_ids,omitempty"`
	Self           bool     `json:"self,omitempty"`
}

// ResourceType returns the Terraform type.
func (SecurityGroup) ResourceType() string { return "aws_security_group" }

func checkRule(errs *schema.Errors, field string, r Rule) {
	schema.Required(errs, field+".protocol", r.Protocol != "")
	schema.OneOf(errs, field+".protocol", r.Protocol, "-1", "tcp", "udp", "icmp", "icmpv6")

	if r.Protocol == "-1" {
		if r.FromPort != 0 || r.ToPort != 0 {
			errs.Add(field+".from_port", "ports must be 0 when protocol is -1 (all traffic)")
		}
	} else {
		schema.IntBetween(errs, field+".from_port", r.FromPort, 0, 65535)
		schema.IntBetween(errs, field+".to_port", r.ToPort, 0, 65535)
		if r.FromPort > r.ToPort {
			errs.Add(field+".from_port", "%d is greater than to_port %d", r.FromPort, r.ToPort)
		}
	}

	schema.AtLeastOneOf(errs,
		[]string{field + ".cidr_blocks", field + ".ipv6_cidr_blocks", field + ".security_groups", field + ".prefix_list_ids", field + ".self"},
		[]bool{len(r.CidrBlocks) > 0, len(r.Ipv6CidrBlocks) > 0, len(r.SecurityGroups) > 0, len(r.PrefixListIDs) > 0, r.Self})

	for _, cidr := range r.CidrBlocks {
		schema.ValidCIDR(errs, field+".cidr_blocks", cidr)
	}
	for _, cidr := range r.Ipv6CidrBlocks {
		schema.ValidCIDR(errs, field+".ipv6_cidr_blocks", cidr)
	}
}

// Validate checks the security group and all of its inline rules.
func (g SecurityGroup) Validate() error {
	var errs schema.Errors

	schema.ConflictsWith(&errs, "name", "name_prefix", g.Name != "" && g.NamePrefix != "")
	schema.StringLength(&errs, "name", g.Name, 1, 255)
	schema.StringLength(&errs, "name_prefix", g.NamePrefix, 1, 100)
	if strings.HasPrefix(g.Name, "sg-") {
		errs.Add("name", "%q cannot start with sg-", g.Name)
	}
	schema.Required(&errs, "vpc_id", g.VpcID != "")
	schema.StringLength(&errs, "description", g.Description, 1, 255)

	for i, r := range g.Ingress {
		checkRule(&errs, fmt.Sprintf("ingress[%d]", i), r)
	}
	for i, r := range g.Egress {
		checkRule(&errs, fmt.Sprintf("egress[%d]", i), r)
	}

	return errs.OrNil()
}

// AddSecurityGroup validates the attributes and attaches the security
// group to the document.
func AddSecurityGroup(doc *tfwire.Document, name string, g SecurityGroup) (SecurityGroupReference, error) {
	if err := g.Validate(); err != nil {
		return SecurityGroupReference{}, fmt.Errorf("aws_security_group.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(g)
	if err != nil {
		return SecurityGroupReference{}, fmt.Errorf("aws_security_group.%s: %w", name, err)
	}
	if err := doc.AddResource(g.ResourceType(), name, attrs); err != nil {
		return SecurityGroupReference{}, err
	}

	return SecurityGroupReference{Name: name, group: g}, nil
}

// SecurityGroupReference is a handle to a declared aws_security_group.
type SecurityGroupReference struct {
	// Name is the symbolic resource name
	Name string

	group SecurityGroup
}

func (r SecurityGroupReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_security_group", r.Name, attr)
}

// ID is the security group ID.
func (r SecurityGroupReference) ID() tfwire.Reference { return r.ref("id") }

// Arn is the security group ARN.
func (r SecurityGroupReference) Arn() tfwire.Reference { return r.ref("arn") }

// GroupName is the security group name attribute.
func (r SecurityGroupReference) GroupName() tfwire.Reference { return r.ref("name") }

// AllowsAllEgress reports whether any egress rule opens all traffic to
// 0.0.0.0/0 or ::/0.
func (r SecurityGroupReference) AllowsAllEgress() bool {
	for _, rule := range r.group.Egress {
		if rule.Protocol != "-1" {
			continue
		}
		for _, cidr := range rule.CidrBlocks {
			if cidr == "0.0.0.0/0" {
				return true
			}
		}
		for _, cidr := range rule.Ipv6CidrBlocks {
			if cidr == "::/0" {
				return true
			}
		}
	}
	return false
}
