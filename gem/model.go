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

// Package gem holds the genome-scale metabolic model data types and the file
// loaders for the common exchange formats.
package gem

import (
	"fmt"
)

// Metabolite is one chemical species of the network.
type Metabolite struct {
	ID          string
	Name        string
	Formula     string
	Compartment string
	// Boundary marks a species outside the mass-balanced system, such as an
	// extracellular sink or source.
	Boundary bool
}

// CarbonCount returns the number of carbon atoms in the metabolite formula.
// Two-letter elements starting with C (Ca, Cl, Co, ...) are not counted.
func (m *Metabolite) CarbonCount() int {
	count := 0
	s := m.Formula
	for i := 0; i < len(s); i++ {
		if s[i] != 'C' {
			continue
		}
		if i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
			continue
		}
		n := 0
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			n = n*10 + int(s[j]-'0')
			j++
		}
		if j == i+1 {
			n = 1
		}
		count += n
	}
	return count
}

// ThermoFlags is the mutable thermodynamic state of a reaction. Computed is
// the only reaction field toggled after load: the optimization driver clears
// it for reactions exempted from thermodynamic consistency checking.
type ThermoFlags struct {
	Computed bool
}

// Reaction is one reaction of the network. Apart from Thermo, a Reaction is
// immutable once loaded.
type Reaction struct {
	ID        string
	Name      string
	Subsystem string
	// Stoich maps metabolite id to its stoichiometric coefficient; negative
	// for substrates, positive for products.
	Stoich     map[string]float64
	LowerBound float64
	UpperBound float64
	Thermo     ThermoFlags
}

// Reversible reports whether the reaction can carry backward flux.
func (r *Reaction) Reversible() bool {
	return r.LowerBound < 0
}

// Model is a loaded metabolic network.
type Model struct {
	ID          string
	Reactions   []*Reaction
	Metabolites map[string]*Metabolite

	byID map[string]*Reaction
}

// NewModel creates an empty model.
func NewModel(id string) *Model {
	return &Model{
		ID:          id,
		Metabolites: make(map[string]*Metabolite),
		byID:        make(map[string]*Reaction),
	}
}

// AddMetabolite registers the metabolite, replacing any previous entry with
// the same id.
func (m *Model) AddMetabolite(met *Metabolite) {
	m.Metabolites[met.ID] = met
}

// AddReaction appends the reaction. Metabolites referenced by the
// stoichiometry but not yet registered are created as bare placeholders.
func (m *Model) AddReaction(rxn *Reaction) error {
	if _, ok := m.byID[rxn.ID]; ok {
		return fmt.Errorf("gem: duplicate reaction id %q", rxn.ID)
	}
	for metID := range rxn.Stoich {
		if _, ok := m.Metabolites[metID]; !ok {
			m.Metabolites[metID] = &Metabolite{ID: metID}
		}
	}
	m.Reactions = append(m.Reactions, rxn)
	m.byID[rxn.ID] = rxn
	return nil
}

// Reaction returns the reaction with the given id.
func (m *Model) Reaction(id string) (*Reaction, bool) {
	r, ok := m.byID[id]
	return r, ok
}

// Metabolite returns the metabolite with the given id.
func (m *Model) Metabolite(id string) (*Metabolite, bool) {
	met, ok := m.Metabolites[id]
	return met, ok
}
