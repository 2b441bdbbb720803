package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseHCL parses a directory configuration file (directory.conf) into
// a plain value map. Only literal attributes and nested blocks are
// supported; there is no expression evaluation context.
func ParseHCL(src []byte, filename string) (map[string]any, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parse %s: unexpected body type %T", filename, f.Body)
	}
	return hclBodyToMap(body, filename)
}

func hclBodyToMap(body *hclsyntax.Body, filename string) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate %s in %s: %s", name, filename, diags.Error())
		}
		out[name] = ctyToGo(val)
	}

	for _, blk := range body.Blocks {
		inner, err := hclBodyToMap(blk.Body, filename)
		if err != nil {
			return nil, err
		}
		// Labeled blocks nest one map level per label.
		nested := any(inner)
		for i := len(blk.Labels) - 1; i >= 0; i-- {
			nested = map[string]any{blk.Labels[i]: nested}
		}
		if existing, ok := out[blk.Type].(map[string]any); ok {
			if m, ok := nested.(map[string]any); ok {
				for k, v := range m {
					existing[k] = v
				}
				continue
			}
		}
		out[blk.Type] = nested
	}

	return out, nil
}

func ctyToGo(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToGo(ev))
		}
		return out
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ctyToGo(ev)
		}
		return out
	default:
		return nil
	}
}
