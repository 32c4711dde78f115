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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const jsonModel = `{
  "id": "toy",
  "metabolites": [
    {"id": "glc_e", "name": "Glucose", "formula": "C6H12O6", "compartment": "e", "boundary_condition": true},
    {"id": "glc_c", "formula": "C6H12O6", "compartment": "c"},
    {"id": "pyr_c", "formula": "C3H3O3", "compartment": "c"}
  ],
  "reactions": [
    {"id": "GLCt", "metabolites": {"glc_e": -1, "glc_c": 1}, "lower_bound": 0, "upper_bound": 10},
    {"id": "GLY", "subsystem": "Glycolysis", "metabolites": {"glc_c": -1, "pyr_c": 2}}
  ]
}`

func TestLoad_JSON(t *testing.T) {
	m, err := Load(writeFixture(t, "toy.json", jsonModel))
	require.NoError(t, err)

	assert.Equal(t, "toy", m.ID)
	assert.Len(t, m.Reactions, 2)

	glc, ok := m.Metabolite("glc_e")
	require.True(t, ok)
	assert.True(t, glc.Boundary)
	assert.Equal(t, 6, glc.CarbonCount())

	transport, ok := m.Reaction("GLCt")
	require.True(t, ok)
	assert.Equal(t, 0.0, transport.LowerBound)
	assert.Equal(t, 10.0, transport.UpperBound)
	assert.False(t, transport.Reversible())

	gly, ok := m.Reaction("GLY")
	require.True(t, ok)
	assert.Equal(t, "Glycolysis", gly.Subsystem)
	assert.Equal(t, -1000.0, gly.LowerBound, "absent bounds default to -1000")
	assert.Equal(t, 1000.0, gly.UpperBound)
	assert.Equal(t, map[string]float64{"glc_c": -1, "pyr_c": 2}, gly.Stoich)
}

const yamlModel = `id: toy
metabolites:
  - id: glc_b
    formula: C6H12O6
  - id: glc_c
    formula: C6H12O6
reactions:
  - id: EX_glc
    metabolites:
      glc_b: -1
      glc_c: 1
    lower_bound: -10
    upper_bound: 0
`

func TestLoad_YAML(t *testing.T) {
	m, err := Load(writeFixture(t, "toy.yml", yamlModel))
	require.NoError(t, err)

	glc, ok := m.Metabolite("glc_b")
	require.True(t, ok)
	assert.True(t, glc.Boundary, "a _b suffix marks a boundary species")

	ex, ok := m.Reaction("EX_glc")
	require.True(t, ok)
	assert.Equal(t, -10.0, ex.LowerBound)
	assert.Equal(t, 0.0, ex.UpperBound)
	assert.True(t, ex.Reversible())
}

const sbmlModelDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level2" level="2" version="1">
  <model id="toy_sbml">
    <listOfSpecies>
      <species id="M_glc_e" name="Glucose" compartment="e" boundaryCondition="true"/>
      <species id="M_glc_c" name="Glucose" compartment="c"/>
      <species id="M_pyr_c" name="Pyruvate" compartment="c"/>
    </listOfSpecies>
    <listOfReactions>
      <reaction id="R_GLCt" reversible="false">
        <listOfReactants>
          <speciesReference species="M_glc_e"/>
        </listOfReactants>
        <listOfProducts>
          <speciesReference species="M_glc_c"/>
        </listOfProducts>
      </reaction>
      <reaction id="R_GLY">
        <notes>
          <body>SUBSYSTEM: Glycolysis</body>
        </notes>
        <listOfReactants>
          <speciesReference species="M_glc_c"/>
        </listOfReactants>
        <listOfProducts>
          <speciesReference species="M_pyr_c" stoichiometry="2"/>
        </listOfProducts>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func TestLoad_SBML(t *testing.T) {
	m, err := Load(writeFixture(t, "toy.xml", sbmlModelDoc))
	require.NoError(t, err)

	assert.Equal(t, "toy_sbml", m.ID)

	glc, ok := m.Metabolite("glc_e")
	require.True(t, ok, "the M_ prefix must be stripped")
	assert.True(t, glc.Boundary)

	transport, ok := m.Reaction("GLCt")
	require.True(t, ok, "the R_ prefix must be stripped")
	assert.Equal(t, 0.0, transport.LowerBound, "reversible=false forces a zero lower bound")
	assert.Equal(t, map[string]float64{"glc_e": -1, "glc_c": 1}, transport.Stoich)

	gly, ok := m.Reaction("GLY")
	require.True(t, ok)
	assert.Equal(t, "Glycolysis", gly.Subsystem)
	assert.Equal(t, -1000.0, gly.LowerBound, "an absent reversible attribute defaults to reversible")
	assert.Equal(t, map[string]float64{"glc_c": -1, "pyr_c": 2}, gly.Stoich)
}

func TestLoad_MATRejected(t *testing.T) {
	_, err := Load("model.mat")
	assert.ErrorIs(t, err, ErrMATNotSupported)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("model.tsv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(writeFixture(t, "bad.json", "{"))
	assert.Error(t, err)
}
