// ABOUTME: Declarative schema mapping metric names to aggregation kinds
// ABOUTME: Schemas can be built in code or loaded from YAML files
package stats

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Operation names an aggregation kind
type Operation string

const (
	OpSum        Operation = "sum"
	OpAvg        Operation = "avg"
	OpMin        Operation = "min"
	OpMax        Operation = "max"
	OpCounter    Operation = "counter"
	OpHistogram  Operation = "histogram"
	OpPercentile Operation = "percentile"
	OpFrequency  Operation = "frequency"
	OpRange      Operation = "range"
	OpDuration   Operation = "duration"
)

var knownOperations = map[Operation]bool{
	OpSum: true, OpAvg: true, OpMin: true, OpMax: true, OpCounter: true,
	OpHistogram: true, OpPercentile: true, OpFrequency: true, OpRange: true, OpDuration: true,
}

// Valid reports whether op is a supported aggregation
func (op Operation) Valid() bool {
	return knownOperations[op]
}

// KPI describes one metric of the schema
type KPI struct {
	Description string    `yaml:"description" json:"description"`
	Operation   Operation `yaml:"operation" json:"operation"`
}

// UnmarshalYAML accepts either a mapping or a bare operation name
func (k *KPI) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		k.Operation = Operation(node.Value)
		return nil
	}
	type plain KPI
	return node.Decode((*plain)(k))
}

// Schema maps metric names to their KPI definition
type Schema map[string]KPI

// LoadSchema decodes a YAML schema and rejects unknown operations
func LoadSchema(r io.Reader) (Schema, error) {
	var schema Schema
	if err := yaml.NewDecoder(r).Decode(&schema); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	for name, kpi := range schema {
		if !kpi.Operation.Valid() {
			return nil, fmt.Errorf("metric %s: unknown operation %q", name, kpi.Operation)
		}
	}
	return schema, nil
}

// LoadSchemaFile reads a YAML schema from path
func LoadSchemaFile(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schema: %w", err)
	}
	defer f.Close()
	return LoadSchema(f)
}
