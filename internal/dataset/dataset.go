// Package dataset loads curated opportunity records and builds the immutable
// in-memory repository that every command and handler reads from.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

//go:embed southbay.yaml
var southBayYAML []byte

type recordFile struct {
	Opportunities []model.Opportunity `yaml:"opportunities"`
}

var seed = sync.OnceValue(func() []model.Opportunity {
	opps, err := Parse(southBayYAML)
	if err != nil {
		panic(eris.Wrap(err, "dataset: embedded south bay records"))
	}
	return opps
})

// SouthBay returns a fresh copy of the built-in South Bay records.
func SouthBay() []model.Opportunity {
	return cloneAll(seed())
}

// Parse decodes a YAML record file and validates every record. Unknown keys
// and duplicate ids are rejected.
func Parse(data []byte) ([]model.Opportunity, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f recordFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, eris.Wrap(err, "dataset: parse records")
	}
	if err := validateAll(f.Opportunities); err != nil {
		return nil, err
	}
	return f.Opportunities, nil
}

// LoadFile reads and parses a YAML record file from path.
func LoadFile(path string) ([]model.Opportunity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	opps, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: load %s", path)
	}
	return opps, nil
}

func validateAll(opps []model.Opportunity) error {
	var errs []string
	seen := make(map[string]bool, len(opps))
	for _, o := range opps {
		if err := o.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if seen[o.ID] {
			errs = append(errs, "duplicate id "+o.ID)
		}
		seen[o.ID] = true
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidInput, "dataset: %d invalid records: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func cloneAll(opps []model.Opportunity) []model.Opportunity {
	out := make([]model.Opportunity, len(opps))
	for i, o := range opps {
		out[i] = o.Clone()
	}
	return out
}
