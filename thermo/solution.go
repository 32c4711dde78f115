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

package thermo

// Solution is the primal assignment of one solve. It is read-only and not
// retained by the model; every Optimize call produces a fresh one.
type Solution struct {
	Objective float64

	primals map[string]float64
	fluxes  map[string]float64
}

// Primal returns the primal value of the variable with the given full name,
// or zero when the name is not part of the solution.
func (s *Solution) Primal(name string) float64 {
	return s.primals[name]
}

// Flux returns the net flux of the reaction with the given id, or zero when
// the id has no flux in the solution.
func (s *Solution) Flux(rxnID string) float64 {
	return s.fluxes[rxnID]
}
