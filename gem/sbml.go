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
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// The SBML loader reads the subset written by COBRA-style exporters: species
// with boundaryCondition and an optional fbc chemical formula, reactions with
// reactant/product speciesReferences, and the legacy "SUBSYSTEM:" note line.
// Flux bound parameters are not resolved; reversibility decides the default
// bounds.

type sbmlDoc struct {
	XMLName xml.Name  `xml:"sbml"`
	Model   sbmlModel `xml:"model"`
}

type sbmlModel struct {
	ID        string         `xml:"id,attr"`
	Species   []sbmlSpecies  `xml:"listOfSpecies>species"`
	Reactions []sbmlReaction `xml:"listOfReactions>reaction"`
}

type sbmlSpecies struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Compartment string `xml:"compartment,attr"`
	Boundary    bool   `xml:"boundaryCondition,attr"`
	Formula     string `xml:"chemicalFormula,attr"`
}

type sbmlReaction struct {
	ID         string           `xml:"id,attr"`
	Name       string           `xml:"name,attr"`
	Reversible *bool            `xml:"reversible,attr"`
	Reactants  []sbmlSpeciesRef `xml:"listOfReactants>speciesReference"`
	Products   []sbmlSpeciesRef `xml:"listOfProducts>speciesReference"`
	Notes      sbmlNotes        `xml:"notes"`
}

type sbmlSpeciesRef struct {
	Species       string   `xml:"species,attr"`
	Stoichiometry *float64 `xml:"stoichiometry,attr"`
}

type sbmlNotes struct {
	Body string `xml:",innerxml"`
}

func loadSBML(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gem: read model: %w", err)
	}
	var doc sbmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("gem: decode sbml model %s: %w", path, err)
	}

	m := NewModel(doc.Model.ID)
	for _, sp := range doc.Model.Species {
		id := strings.TrimPrefix(sp.ID, "M_")
		m.AddMetabolite(&Metabolite{
			ID:          id,
			Name:        sp.Name,
			Formula:     sp.Formula,
			Compartment: sp.Compartment,
			Boundary:    sp.Boundary || strings.HasSuffix(id, "_b"),
		})
	}
	for _, rx := range doc.Model.Reactions {
		stoich := make(map[string]float64)
		for _, ref := range rx.Reactants {
			stoich[strings.TrimPrefix(ref.Species, "M_")] -= refStoich(ref)
		}
		for _, ref := range rx.Products {
			stoich[strings.TrimPrefix(ref.Species, "M_")] += refStoich(ref)
		}
		lb := float64(defaultLowerBound)
		// SBML defaults reversible to true when the attribute is absent.
		if rx.Reversible != nil && !*rx.Reversible {
			lb = 0
		}
		r := &Reaction{
			ID:         strings.TrimPrefix(rx.ID, "R_"),
			Name:       rx.Name,
			Subsystem:  subsystemFromNotes(rx.Notes.Body),
			Stoich:     stoich,
			LowerBound: lb,
			UpperBound: defaultUpperBound,
		}
		if err := m.AddReaction(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func refStoich(ref sbmlSpeciesRef) float64 {
	if ref.Stoichiometry == nil {
		return 1
	}
	return *ref.Stoichiometry
}

// subsystemFromNotes extracts the value of the legacy "SUBSYSTEM:" line from
// a reaction notes body.
func subsystemFromNotes(notes string) string {
	i := strings.Index(notes, "SUBSYSTEM:")
	if i < 0 {
		return ""
	}
	rest := notes[i+len("SUBSYSTEM:"):]
	if j := strings.IndexAny(rest, "<\n"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
