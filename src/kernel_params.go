package simkernel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParamFormat selects how ParamKernel writes a sweep point
type ParamFormat string

const (
	FormatText ParamFormat = "text"
	FormatYAML ParamFormat = "yaml"
)

// ParseParamFormat maps a --format value to a ParamFormat
func ParseParamFormat(name string) (ParamFormat, error) {
	switch f := ParamFormat(strings.ToLower(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// ParamKernel is the kernel the simk command runs: it writes the parameter
// values bound at each sweep point. With no Names it writes every global
// name that has a plain, non-function definition.
type ParamKernel struct {
	Names  []string
	Format ParamFormat

	values []paramValue
}

type paramValue struct {
	name  string
	value *Expr
}

// NewParamKernelFactory returns a factory for ParamKernels sharing one
// name list and format
func NewParamKernelFactory(names []string, format ParamFormat) KernelFactory {
	return func() Kernel {
		return &ParamKernel{Names: names, Format: format}
	}
}

// Initialize evaluates the parameters of the current point
func (k *ParamKernel) Initialize(_ context.Context, sim *Sim) error {
	names := k.Names
	if len(names) == 0 {
		names = paramNames(sim)
	}
	k.values = k.values[:0]
	for _, name := range names {
		v, err := sim.Get(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAbort, err)
		}
		k.values = append(k.values, paramValue{name, v})
	}
	return nil
}

// Execute writes the point
func (k *ParamKernel) Execute(_ context.Context, sim *Sim) error {
	if k.Format == FormatYAML {
		return k.writeYAML(sim)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "iteration %d:", sim.Iteration())
	for i, p := range k.values {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, " %s = %s", p.name, p.value)
	}
	sb.WriteByte('\n')
	_, err := fmt.Fprint(sim.Out(), sb.String())
	return err
}

// Finalize does nothing; the point has been written
func (k *ParamKernel) Finalize(context.Context, *Sim) error { return nil }

// writeYAML emits the point as one item of a top level sequence, so the
// concatenated output of a run is a single YAML document
func (k *ParamKernel) writeYAML(sim *Sim) error {
	values := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range k.values {
		values.Content = append(values.Content, yamlScalar(p.name, "!!str"), exprNode(p.value))
	}
	item := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		yamlScalar("iteration", "!!str"), yamlScalar(strconv.Itoa(sim.Iteration()), "!!int"),
		yamlScalar("values", "!!str"), values,
	}}
	doc := &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{item}}

	enc := yaml.NewEncoder(sim.Out())
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("yaml output: %w", err)
	}
	return enc.Close()
}

func yamlScalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// exprNode maps atoms to typed YAML scalars and lists to flow sequences.
// Anything else is written in its printed form.
func exprNode(e *Expr) *yaml.Node {
	switch e.kind {
	case KindInteger:
		return yamlScalar(strconv.Itoa(e.i), "!!int")
	case KindReal:
		return yamlScalar(formatReal(e.r), "!!float")
	case KindBool:
		return yamlScalar(strconv.FormatBool(e.b), "!!bool")
	case KindString:
		return yamlScalar(e.s, "!!str")
	case KindNull:
		return yamlScalar("null", "!!null")
	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, a := range e.args {
			seq.Content = append(seq.Content, exprNode(a))
		}
		return seq
	}
	if e.RealQ() {
		return yamlScalar(formatReal(e.float()), "!!float")
	}
	return yamlScalar(e.String(), "!!str")
}

// paramNames lists the global names bound to plain values
func paramNames(sim *Sim) []string {
	scope := sim.engine.scope
	var names []string
	for _, name := range scope.Names() {
		body := scope.Match(name)
		if body == noMatchExpr || body.kind == KindFunction {
			continue
		}
		names = append(names, name)
	}
	return names
}
