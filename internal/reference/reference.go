// Package reference loads the peer-company table used to seed the risk board.
package reference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/climarisk/internal/domain/model"
)

// ErrInvalidTable wraps every parse and validation failure of a reference table.
var ErrInvalidTable = errors.New("invalid reference table")

// Table is a set of already-assessed peer companies.
type Table struct {
	// Profile applies to companies that do not name one.
	Profile   string    `yaml:"profile"`
	Companies []Company `yaml:"companies"`
}

// Company is one peer and its raw items.
type Company struct {
	Name    string             `yaml:"name"`
	Profile string             `yaml:"profile"`
	Items   []model.ScoredItem `yaml:"items"`
}

// ProfileFor returns the company's profile or the table default.
func (t Table) ProfileFor(c Company) string {
	if c.Profile != "" {
		return c.Profile
	}
	return t.Profile
}

// Load reads and validates a table from path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read reference table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a table, rejecting unknown keys.
func Parse(data []byte) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	if err := t.validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t Table) validate() error {
	seen := make(map[string]struct{}, len(t.Companies))
	for i, c := range t.Companies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: company %d has no name", ErrInvalidTable, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: company %q listed twice", ErrInvalidTable, name)
		}
		seen[name] = struct{}{}
		if len(c.Items) == 0 {
			return fmt.Errorf("%w: company %q has no items", ErrInvalidTable, name)
		}
	}
	return nil
}
