package tfwire_aws

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// ToHCL renders the document in HCL syntax for human review. The canonical
// output format is Terraform JSON (ToJSON); the HCL rendering writes nested
// blocks as object attributes, which Terraform accepts for most arguments.
func ToHCL(d *Document) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if d.requiredVersion != "" || len(d.requiredProviders) > 0 {
		tf := body.AppendNewBlock("terraform", nil).Body()
		if d.requiredVersion != "" {
			tf.SetAttributeRaw("required_version", rawTokens(renderExpr(d.requiredVersion)))
		}
		if len(d.requiredProviders) > 0 {
			rp := tf.AppendNewBlock("required_providers", nil).Body()
			for _, name := range sortedKeys(d.requiredProviders) {
				req := d.requiredProviders[name]
				obj := map[string]any{"source": req.Source}
				if req.Version != "" {
					obj["version"] = req.Version
				}
				rp.SetAttributeRaw(name, rawTokens(renderExpr(obj)))
			}
		}
		body.AppendNewline()
	}

	for _, name := range sortedKeys(d.providers) {
		for _, block := range d.providers[name] {
			pb := body.AppendNewBlock("provider", []string{name}).Body()
			writeAttrs(pb, block)
			body.AppendNewline()
		}
	}

	for _, name := range sortedKeys(d.variables) {
		v := d.variables[name]
		vb := body.AppendNewBlock("variable", []string{name}).Body()
		if v.Type != "" {
			vb.SetAttributeRaw("type", rawTokens(v.Type))
		}
		if v.Description != "" {
			vb.SetAttributeRaw("description", rawTokens(renderExpr(v.Description)))
		}
		if v.Default != nil {
			vb.SetAttributeRaw("default", rawTokens(renderExpr(v.Default)))
		}
		if v.Sensitive {
			vb.SetAttributeRaw("sensitive", rawTokens("true"))
		}
		body.AppendNewline()
	}

	if len(d.locals) > 0 {
		lb := body.AppendNewBlock("locals", nil).Body()
		writeAttrs(lb, d.locals)
		body.AppendNewline()
	}

	for _, typ := range sortedKeys(d.data) {
		for _, name := range sortedKeys(d.data[typ]) {
			db := body.AppendNewBlock("data", []string{typ, name}).Body()
			writeAttrs(db, d.data[typ][name])
			body.AppendNewline()
		}
	}

	for _, typ := range sortedKeys(d.resources) {
		for _, name := range sortedKeys(d.resources[typ]) {
			rb := body.AppendNewBlock("resource", []string{typ, name}).Body()
			writeAttrs(rb, d.resources[typ][name])
			body.AppendNewline()
		}
	}

	for _, name := range sortedKeys(d.outputs) {
		o := d.outputs[name]
		ob := body.AppendNewBlock("output", []string{name}).Body()
		ob.SetAttributeRaw("value", rawTokens(renderExpr(o.Value)))
		if o.Description != "" {
			ob.SetAttributeRaw("description", rawTokens(renderExpr(o.Description)))
		}
		if o.Sensitive {
			ob.SetAttributeRaw("sensitive", rawTokens("true"))
		}
		body.AppendNewline()
	}

	return f.Bytes(), nil
}

func writeAttrs(body *hclwrite.Body, attrs map[string]any) {
	for _, key := range sortedKeys(attrs) {
		body.SetAttributeRaw(key, rawTokens(renderExpr(attrs[key])))
	}
}

func rawTokens(text string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(text)},
	}
}

// soleInterp matches strings that are exactly one interpolation, which are
// emitted as bare expressions rather than quoted strings.
func soleInterp(s string) (string, bool) {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	inner := s[2 : len(s)-1]
	if strings.Contains(inner, "${") || strings.Contains(inner, "}") {
		return "", false
	}
	return inner, true
}

// renderExpr renders a JSON-compatible value as HCL expression text.
func renderExpr(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if expr, ok := soleInterp(val); ok {
			return expr
		}
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return renderExpr(val.String())
	case map[string]any:
		if len(val) == 0 {
			return "{}"
		}
		var b strings.Builder
		b.WriteString("{\n")
		for _, key := range sortedKeys(val) {
			fmt.Fprintf(&b, "    %s = %s\n", maybeQuoteKey(key), renderExpr(val[key]))
		}
		b.WriteString("  }")
		return b.String()
	case []any:
		if len(val) == 0 {
			return "[]"
		}
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = renderExpr(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = renderExpr(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return strconv.Quote(fmt.Sprintf("%v", val))
	}
}

func maybeQuoteKey(key string) string {
	if nameRE.MatchString(key) && !strings.Contains(key, "-") {
		return key
	}
	return strconv.Quote(key)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
