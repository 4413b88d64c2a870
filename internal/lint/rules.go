// Rules:
//
//	TFW001: Security group admits the whole internet on a sensitive port
//	TFW002: RDS instance without storage encryption
//	TFW003: S3 bucket without a locked-down public access block
//	TFW004: IAM policy statement uses a wildcard action
//	TFW005: SQS queue without server-side encryption
//	TFW006: RDS instance is publicly accessible
//	TFW007: Lambda environment variable looks like an inline secret
package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

// AllRules returns every rule, in ID order.
func AllRules() []Rule {
	return []Rule{
		OpenSecurityGroup{},
		UnencryptedRDSStorage{},
		PublicS3Bucket{},
		WildcardIAMAction{},
		UnencryptedSQSQueue{},
		PublicRDSInstance{},
		LambdaInlineSecret{},
	}
}

// sortedNames iterates a resource map deterministically.
func sortedNames(byName map[string]map[string]any) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenSecurityGroup detects ingress rules that admit 0.0.0.0/0 or ::/0 on
// ports that should never face the internet.
type OpenSecurityGroup struct{}

func (OpenSecurityGroup) ID() string { return "TFW001" }
func (OpenSecurityGroup) Description() string {
	return "Security group admits the whole internet on a sensitive port"
}

// ports exposed to the world that almost always indicate a mistake
var sensitivePorts = map[int]string{
	22:    "SSH",
	3389:  "RDP",
	3306:  "MySQL",
	5432:  "PostgreSQL",
	6379:  "Redis",
	9200:  "Elasticsearch",
	27017: "MongoDB",
}

func (OpenSecurityGroup) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	groups := doc.ResourcesOfType("aws_security_group")

	for _, name := range sortedNames(groups) {
		attrs := groups[name]
		addr := "aws_security_group." + name

		for _, rule := range blockList(attrs["ingress"]) {
			if !admitsWorld(rule) {
				continue
			}
			from := intValue(rule["from_port"])
			to := intValue(rule["to_port"])
			proto, _ := rule["protocol"].(string)

			if proto == "-1" {
				issues = append(issues, Issue{
					Rule: "TFW001", Severity: SeverityError, Address: addr,
					Message: "ingress rule admits all traffic from the whole internet",
				})
				continue
			}
			for port, service := range sensitivePorts {
				if port >= from && port <= to {
					issues = append(issues, Issue{
						Rule: "TFW001", Severity: SeverityError, Address: addr,
						Message: fmt.Sprintf("ingress rule exposes %s (port %d) to the whole internet", service, port),
					})
				}
			}
		}
	}
	return issues
}

// admitsWorld reports whether a rule block lists 0.0.0.0/0 or ::/0.
func admitsWorld(rule map[string]any) bool {
	for _, key := range []string{"cidr_blocks", "ipv6_cidr_blocks"} {
		list, ok := rule[key].([]any)
		if !ok {
			continue
		}
		for _, v := range list {
			if s, ok := v.(string); ok && (s == "0.0.0.0/0" || s == "::/0") {
				return true
			}
		}
	}
	return false
}

// blockList normalizes a block attribute: either a list of blocks or a
// single block map.
func blockList(v any) []map[string]any {
	switch b := v.(type) {
	case []any:
		var blocks []map[string]any
		for _, e := range b {
			if m, ok := e.(map[string]any); ok {
				blocks = append(blocks, m)
			}
		}
		return blocks
	case []map[string]any:
		return b
	case map[string]any:
		return []map[string]any{b}
	default:
		return nil
	}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// UnencryptedRDSStorage detects database instances without storage
// encryption. Aurora storage is always encrypted at the cluster level, so
// aurora engines are skipped.
type UnencryptedRDSStorage struct{}

func (UnencryptedRDSStorage) ID() string { return "TFW002" }
func (UnencryptedRDSStorage) Description() string {
	return "RDS instance without storage encryption"
}

func (UnencryptedRDSStorage) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	instances := doc.ResourcesOfType("aws_db_instance")

	for _, name := range sortedNames(instances) {
		attrs := instances[name]
		if engine, _ := attrs["engine"].(string); strings.HasPrefix(engine, "aurora") {
			continue
		}
		if enc, _ := attrs["storage_encrypted"].(bool); !enc {
			issues = append(issues, Issue{
				Rule: "TFW002", Severity: SeverityWarning,
				Address: "aws_db_instance." + name,
				Message: "storage_encrypted is not enabled",
			})
		}
	}
	return issues
}

// PublicS3Bucket detects buckets without a fully locked-down public access
// block.
type PublicS3Bucket struct{}

func (PublicS3Bucket) ID() string { return "TFW003" }
func (PublicS3Bucket) Description() string {
	return "S3 bucket without a locked-down public access block"
}

func (PublicS3Bucket) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	buckets := doc.ResourcesOfType("aws_s3_bucket")
	blocks := doc.ResourcesOfType("aws_s3_bucket_public_access_block")

	for _, name := range sortedNames(buckets) {
		addr := "aws_s3_bucket." + name
		block, ok := blocks[name]
		if !ok {
			issues = append(issues, Issue{
				Rule: "TFW003", Severity: SeverityWarning, Address: addr,
				Message: "bucket has no aws_s3_bucket_public_access_block",
			})
			continue
		}
		for _, toggle := range []string{"block_public_acls", "block_public_policy", "ignore_public_acls", "restrict_public_buckets"} {
			if on, _ := block[toggle].(bool); !on {
				issues = append(issues, Issue{
					Rule: "TFW003", Severity: SeverityWarning, Address: addr,
					Message: toggle + " is disabled on the bucket's public access block",
				})
			}
		}
	}
	return issues
}

// WildcardIAMAction detects policy statements that allow "*" or
// "service:*" actions.
type WildcardIAMAction struct{}

func (WildcardIAMAction) ID() string { return "TFW004" }
func (WildcardIAMAction) Description() string {
	return "IAM policy statement uses a wildcard action"
}

// policy-bearing resource types and their policy attribute
var policyAttrs = map[string]string{
	"aws_iam_user_policy":  "policy",
	"aws_iam_role_policy":  "policy",
	"aws_iam_group_policy": "policy",
	"aws_iam_policy":       "policy",
	"aws_sqs_queue_policy": "policy",
}

func (WildcardIAMAction) Check(doc *tfwire.Document) []Issue {
	var issues []Issue

	types := make([]string, 0, len(policyAttrs))
	for typ := range policyAttrs {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		attr := policyAttrs[typ]
		byName := doc.ResourcesOfType(typ)
		for _, name := range sortedNames(byName) {
			raw, _ := byName[name][attr].(string)
			if raw == "" {
				continue
			}
			var policy struct {
				Statement []map[string]any `json:"Statement"`
			}
			if err := json.Unmarshal([]byte(raw), &policy); err != nil {
				continue
			}
			for _, stmt := range policy.Statement {
				if effect, _ := stmt["Effect"].(string); effect == "Deny" {
					continue
				}
				for _, action := range stringList(stmt["Action"]) {
					if action == "*" || strings.HasSuffix(action, ":*") {
						issues = append(issues, Issue{
							Rule: "TFW004", Severity: SeverityWarning,
							Address: typ + "." + name,
							Message: fmt.Sprintf("policy statement allows wildcard action %q", action),
						})
					}
				}
			}
		}
	}
	return issues
}

// stringList normalizes a policy field that may be a string or a list.
func stringList(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		var out []string
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// UnencryptedSQSQueue detects queues with neither a customer key nor
// SQS-managed encryption.
type UnencryptedSQSQueue struct{}

func (UnencryptedSQSQueue) ID() string { return "TFW005" }
func (UnencryptedSQSQueue) Description() string {
	return "SQS queue without server-side encryption"
}

func (UnencryptedSQSQueue) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	queues := doc.ResourcesOfType("aws_sqs_queue")

	for _, name := range sortedNames(queues) {
		attrs := queues[name]
		key, _ := attrs["kms_master_key_id"].(string)
		managed, _ := attrs["sqs_managed_sse_enabled"].(bool)
		if key == "" && !managed {
			issues = append(issues, Issue{
				Rule: "TFW005", Severity: SeverityInfo,
				Address: "aws_sqs_queue." + name,
				Message: "queue has neither kms_master_key_id nor sqs_managed_sse_enabled",
			})
		}
	}
	return issues
}

// PublicRDSInstance detects databases exposed with a public address.
type PublicRDSInstance struct{}

func (PublicRDSInstance) ID() string { return "TFW006" }
func (PublicRDSInstance) Description() string {
	return "RDS instance is publicly accessible"
}

func (PublicRDSInstance) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	instances := doc.ResourcesOfType("aws_db_instance")

	for _, name := range sortedNames(instances) {
		if public, _ := instances[name]["publicly_accessible"].(bool); public {
			issues = append(issues, Issue{
				Rule: "TFW006", Severity: SeverityError,
				Address: "aws_db_instance." + name,
				Message: "publicly_accessible is enabled",
			})
		}
	}
	return issues
}

// LambdaInlineSecret detects environment variables whose names suggest a
// credential carried as a literal value instead of a reference.
type LambdaInlineSecret struct{}

func (LambdaInlineSecret) ID() string { return "TFW007" }
func (LambdaInlineSecret) Description() string {
	return "Lambda environment variable looks like an inline secret"
}

var secretMarkers = []string{"SECRET", "PASSWORD", "TOKEN", "API_KEY", "PRIVATE_KEY", "CREDENTIAL"}

func (LambdaInlineSecret) Check(doc *tfwire.Document) []Issue {
	var issues []Issue
	functions := doc.ResourcesOfType("aws_lambda_function")

	for _, name := range sortedNames(functions) {
		env, ok := functions[name]["environment"].(map[string]any)
		if !ok {
			continue
		}
		vars, ok := env["variables"].(map[string]any)
		if !ok {
			continue
		}

		var keys []string
		for key := range vars {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value, _ := vars[key].(string)
			// references and interpolations are the sanctioned way to
			// pass secrets in
			if value == "" || strings.Contains(value, "${") {
				continue
			}
			upper := strings.ToUpper(key)
			for _, marker := range secretMarkers {
				if strings.Contains(upper, marker) {
					issues = append(issues, Issue{
						Rule: "TFW007", Severity: SeverityWarning,
						Address: "aws_lambda_function." + name,
						Message: fmt.Sprintf("environment variable %q appears to hold an inline secret", key),
					})
					break
				}
			}
		}
	}
	return issues
}
