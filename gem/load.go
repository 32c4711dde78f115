// Copyright 2026 The LumpGEM Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gem

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load failures.
var (
	ErrUnsupportedFormat = errors.New("gem: unsupported model format")
	ErrMATNotSupported   = errors.New("gem: matlab models are not supported, convert to json, yaml or sbml")
)

// Default flux bounds applied when a format does not carry explicit bounds.
const (
	defaultLowerBound = -1000
	defaultUpperBound = 1000
)

// Load reads a metabolic model from a file, selecting the loader by
// extension: .json, .yml/.yaml, or .xml (SBML). A .mat path is recognized but
// rejected; any other extension yields ErrUnsupportedFormat.
func Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".yml", ".yaml":
		return loadYAML(path)
	case ".xml":
		return loadSBML(path)
	case ".mat":
		return nil, fmt.Errorf("%w: %s", ErrMATNotSupported, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// fileModel mirrors the COBRA JSON schema; the YAML loader reuses it.
type fileModel struct {
	ID          string           `json:"id" yaml:"id"`
	Metabolites []fileMetabolite `json:"metabolites" yaml:"metabolites"`
	Reactions   []fileReaction   `json:"reactions" yaml:"reactions"`
}

type fileMetabolite struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Formula     string `json:"formula" yaml:"formula"`
	Compartment string `json:"compartment" yaml:"compartment"`
	Boundary    bool   `json:"boundary_condition" yaml:"boundary_condition"`
}

type fileReaction struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Subsystem   string             `json:"subsystem" yaml:"subsystem"`
	Metabolites map[string]float64 `json:"metabolites" yaml:"metabolites"`
	LowerBound  *float64           `json:"lower_bound" yaml:"lower_bound"`
	UpperBound  *float64           `json:"upper_bound" yaml:"upper_bound"`
}

func (fm *fileModel) build() (*Model, error) {
	m := NewModel(fm.ID)
	for _, met := range fm.Metabolites {
		m.AddMetabolite(&Metabolite{
			ID:          met.ID,
			Name:        met.Name,
			Formula:     met.Formula,
			Compartment: met.Compartment,
			Boundary:    met.Boundary || strings.HasSuffix(met.ID, "_b"),
		})
	}
	for _, rxn := range fm.Reactions {
		r := &Reaction{
			ID:         rxn.ID,
			Name:       rxn.Name,
			Subsystem:  rxn.Subsystem,
			Stoich:     rxn.Metabolites,
			LowerBound: defaultLowerBound,
			UpperBound: defaultUpperBound,
		}
		if rxn.LowerBound != nil {
			r.LowerBound = *rxn.LowerBound
		}
		if rxn.UpperBound != nil {
			r.UpperBound = *rxn.UpperBound
		}
		if err := m.AddReaction(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func loadJSON(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gem: read model: %w", err)
	}
	var fm fileModel
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("gem: decode json model %s: %w", path, err)
	}
	return fm.build()
}

func loadYAML(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gem: read model: %w", err)
	}
	var fm fileModel
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("gem: decode yaml model %s: %w", path, err)
	}
	return fm.build()
}
