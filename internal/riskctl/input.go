// Package riskctl implements the riskctl command line: local scoring and
// aggregation of input files, and submission to a running server.
package riskctl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/climarisk/internal/domain/model"
)

// ErrInvalidInput wraps every parse and validation failure of an input file.
var ErrInvalidInput = errors.New("invalid input file")

// Input is the document every command reads. JSON is accepted as well since
// it is a subset of YAML.
type Input struct {
	RequestID    string              `yaml:"request_id" json:"request_id,omitempty"`
	Company      string              `yaml:"company" json:"company,omitempty"`
	Profile      string              `yaml:"profile" json:"profile,omitempty"`
	Items        []model.ScoredItem  `yaml:"items" json:"items,omitempty"`
	Observations []model.Observation `yaml:"observations" json:"observations,omitempty"`
	Metrics      []string            `yaml:"metrics" json:"metrics,omitempty"`
}

// LoadInput reads path, or stdin when path is "-".
func LoadInput(path string, stdin io.Reader) (Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseInput(data)
}

// ParseInput decodes one document, rejecting unknown keys.
func ParseInput(data []byte) (Input, error) {
	var in Input
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return Input{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
		}
		return Input{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return in, nil
}
