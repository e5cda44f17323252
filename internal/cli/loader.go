package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/Robertorosmaninho/mlir/internal/ir"
)

// GraphFixture is the YAML form of a graph fixture:
//
//	inputs:
//	  - name: x
//	    type: number
//	operations:
//	  - name: b
//	    op: BOp
//	    result_types: [[number]]
//	  - name: a
//	    op: AOp
//	    operands: [[b.0]]
//	    attrs: {attr: 5}
//	    result_types: [[number]]
//
// Operand references are either an input name or "op.N" where N is the
// flattened result index of an earlier operation.
type GraphFixture struct {
	Inputs     []InputFixture     `yaml:"inputs"`
	Operations []OperationFixture `yaml:"operations"`
}

// InputFixture declares one external input value.
type InputFixture struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// OperationFixture declares one operation: its operand groups (one
// list of references per declared slot), attributes, and result types
// (one type list per declared result slot).
type OperationFixture struct {
	Name        string         `yaml:"name"`
	Op          string         `yaml:"op"`
	Operands    [][]string     `yaml:"operands"`
	Attrs       map[string]any `yaml:"attrs"`
	ResultTypes [][]string     `yaml:"result_types"`
}

// LoadGraphFixture parses a YAML graph fixture file.
func LoadGraphFixture(path string) (*GraphFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph fixture: %w", err)
	}

	var fixture GraphFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse graph fixture: %w", err)
	}
	if len(fixture.Operations) == 0 && len(fixture.Inputs) == 0 {
		return nil, fmt.Errorf("graph fixture %s declares no inputs and no operations", path)
	}
	return &fixture, nil
}

// BuildGraph materializes a fixture over the given registry. Fixture
// operations must be declared in dependency order; references resolve
// against inputs and earlier operations only.
func (f *GraphFixture) BuildGraph(reg *ir.Registry) (*ir.Graph, error) {
	g := ir.NewGraph(reg)

	inputs := make(map[string]*ir.Value, len(f.Inputs))
	for _, in := range f.Inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("input without a name")
		}
		typ, err := parseType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Name, err)
		}
		if _, dup := inputs[in.Name]; dup {
			return nil, fmt.Errorf("duplicate input name %q", in.Name)
		}
		inputs[in.Name] = g.AddInput(typ)
	}

	results := make(map[string]ir.ValueGroup, len(f.Operations))
	for _, opf := range f.Operations {
		if opf.Name == "" {
			return nil, fmt.Errorf("operation without a name")
		}
		if _, dup := results[opf.Name]; dup {
			return nil, fmt.Errorf("duplicate operation name %q", opf.Name)
		}

		operands := make([]ir.ValueGroup, len(opf.Operands))
		for slot, refs := range opf.Operands {
			group := make(ir.ValueGroup, 0, len(refs))
			for _, ref := range refs {
				v, err := resolveRef(ref, inputs, results)
				if err != nil {
					return nil, fmt.Errorf("operation %s operand slot %d: %w", opf.Name, slot, err)
				}
				group = append(group, v)
			}
			operands[slot] = group
		}

		attrs := make(map[string]cty.Value, len(opf.Attrs))
		for name, raw := range opf.Attrs {
			v, err := attrValue(raw)
			if err != nil {
				return nil, fmt.Errorf("operation %s attr %s: %w", opf.Name, name, err)
			}
			attrs[name] = v
		}

		resultTypes := make([][]cty.Type, len(opf.ResultTypes))
		for slot, names := range opf.ResultTypes {
			types := make([]cty.Type, len(names))
			for i, name := range names {
				typ, err := parseType(name)
				if err != nil {
					return nil, fmt.Errorf("operation %s result slot %d: %w", opf.Name, slot, err)
				}
				types[i] = typ
			}
			resultTypes[slot] = types
		}

		op, err := g.CreateOperation(opf.Op, operands, attrs, resultTypes)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", opf.Name, err)
		}
		results[opf.Name] = op.Results()
	}

	return g, nil
}

// resolveRef resolves "input" or "op.N" to a value.
func resolveRef(ref string, inputs map[string]*ir.Value, results map[string]ir.ValueGroup) (*ir.Value, error) {
	if v, ok := inputs[ref]; ok {
		return v, nil
	}

	name, idxStr, found := strings.Cut(ref, ".")
	if !found {
		return nil, fmt.Errorf("unknown reference %q", ref)
	}
	group, ok := results[name]
	if !ok {
		return nil, fmt.Errorf("reference %q names an undeclared operation", ref)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return nil, fmt.Errorf("reference %q has a non-numeric result index", ref)
	}
	if idx < 0 || idx >= len(group) {
		return nil, fmt.Errorf("reference %q: result index out of range (operation has %d results)", ref, len(group))
	}
	return group[idx], nil
}

func parseType(name string) (cty.Type, error) {
	switch name {
	case "number":
		return cty.Number, nil
	case "string":
		return cty.String, nil
	case "bool":
		return cty.Bool, nil
	default:
		return cty.NilType, fmt.Errorf("unknown type %q (want number, string, or bool)", name)
	}
}

// attrValue converts a YAML scalar to an attribute value.
func attrValue(raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported attribute value %v (%T)", raw, raw)
	}
}
