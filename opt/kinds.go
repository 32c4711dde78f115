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

package opt

// VarKind tags a variable with its naming prefix. Every concrete kind must
// implement Prefix; the compile-time assertions below replace the runtime
// "did you declare a prefix" check some modeling frameworks perform via
// reflection.
type VarKind interface {
	Prefix() string
}

// ConsKind tags a constraint with its naming prefix.
type ConsKind interface {
	Prefix() string
}

// Variable kinds.
type (
	// ForwardFlux is the non-negative forward component of a reaction flux.
	ForwardFlux struct{}
	// BackwardFlux is the non-negative backward component of a reaction flux.
	BackwardFlux struct{}
	// DeltaG is the transformed Gibbs energy of a reaction.
	DeltaG struct{}
	// ForwardUse is the binary marker allowing forward flux through a reaction.
	ForwardUse struct{}
	// BackwardUse is the binary marker allowing backward flux through a reaction.
	BackwardUse struct{}
	// LumpIndicator is the binary activity indicator of a non-core reaction.
	LumpIndicator struct{}
)

func (ForwardFlux) Prefix() string   { return "F_" }
func (BackwardFlux) Prefix() string  { return "R_" }
func (DeltaG) Prefix() string        { return "DG_" }
func (ForwardUse) Prefix() string    { return "FU_" }
func (BackwardUse) Prefix() string   { return "BU_" }
func (LumpIndicator) Prefix() string { return "B_" }

// Constraint kinds.
type (
	// MassBalance is the steady-state balance of one metabolite.
	MassBalance struct{}
	// ForwardUseCoupling caps forward flux by its use marker.
	ForwardUseCoupling struct{}
	// BackwardUseCoupling caps backward flux by its use marker.
	BackwardUseCoupling struct{}
	// ForwardDeltaGCoupling forces a negative ΔG when forward flux is used.
	ForwardDeltaGCoupling struct{}
	// BackwardDeltaGCoupling forces a positive ΔG when backward flux is used.
	BackwardDeltaGCoupling struct{}
	// SimultaneousUse forbids forward and backward use at once.
	SimultaneousUse struct{}
	// UptakeCoupling ties a non-core reaction's bidirectional flux to its
	// lump indicator and the carbon uptake bound.
	UptakeCoupling struct{}
	// GrowthBound is the transient lower bound on a biomass reaction flux.
	GrowthBound struct{}
)

func (MassBalance) Prefix() string            { return "MB_" }
func (ForwardUseCoupling) Prefix() string     { return "UF_" }
func (BackwardUseCoupling) Prefix() string    { return "UR_" }
func (ForwardDeltaGCoupling) Prefix() string  { return "GF_" }
func (BackwardDeltaGCoupling) Prefix() string { return "GR_" }
func (SimultaneousUse) Prefix() string        { return "SU_" }
func (UptakeCoupling) Prefix() string         { return "UC_" }
func (GrowthBound) Prefix() string            { return "GC_" }

var (
	_ = [...]VarKind{ForwardFlux{}, BackwardFlux{}, DeltaG{}, ForwardUse{}, BackwardUse{}, LumpIndicator{}}
	_ = [...]ConsKind{MassBalance{}, ForwardUseCoupling{}, BackwardUseCoupling{},
		ForwardDeltaGCoupling{}, BackwardDeltaGCoupling{}, SimultaneousUse{}, UptakeCoupling{}, GrowthBound{}}
)
