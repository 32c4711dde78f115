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

// Package lumpgem condenses the non-core part of a genome-scale metabolic
// network into per-biomass lumped reactions.
//
// The network is partitioned into biomass, core, and non-core reactions. Each
// non-core reaction gets a binary activity indicator coupled to the carbon
// uptake bound, the indicator sum is maximized, and for each biomass reaction
// the model is solved under a transient growth lower bound. The flux solution
// is collapsed into one aggregate pseudo-reaction per biomass target.
//
// A LumpGEM instance owns one shared optimization problem. Lumping calls
// inject and remove a growth constraint on that problem, so calls must run
// strictly sequentially; concurrent LumpReaction calls against one instance
// are not safe.
package lumpgem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	log "github.com/golang/glog"

	"github.com/metabolica/lumpgem/gem"
	"github.com/metabolica/lumpgem/opt"
	"github.com/metabolica/lumpgem/thermo"
)

// ErrUnknownBiomass is returned by LumpReaction for an id that was not
// configured as a biomass reaction.
var ErrUnknownBiomass = errors.New("lumpgem: not a configured biomass reaction")

// contributionTol discards aggregate stoichiometric coefficients that are
// numerically zero.
const contributionTol = 1e-9

// Config is the only configuration surface of the lumping core.
type Config struct {
	// ModelPath locates the metabolic model file (.json, .yml, .xml).
	ModelPath string
	// BiomassReactions lists the ids of the biomass building block reactions.
	BiomassReactions []string
	// CoreSubsystems lists the subsystem names whose reactions are kept
	// intact rather than lumped.
	CoreSubsystems []string
	// CarbonUptake is the carbon uptake bound, atoms per unit time.
	CarbonUptake float64
	// GrowthRate is the growth lower bound injected per lumping call, 1/h.
	GrowthRate float64
	// ThermoDBPath locates the thermodynamic reference database.
	ThermoDBPath string
}

func (cfg *Config) validate() error {
	if cfg.CarbonUptake <= 0 {
		return fmt.Errorf("lumpgem: carbon uptake bound must be positive, got %v", cfg.CarbonUptake)
	}
	if cfg.GrowthRate < 0 {
		return fmt.Errorf("lumpgem: growth rate must not be negative, got %v", cfg.GrowthRate)
	}
	return nil
}

// LumpedReaction is the aggregate pseudo-reaction produced by one lumping
// call. It is a value; it is not registered back into the network.
type LumpedReaction struct {
	// Biomass is the id of the biomass reaction this lump supports.
	Biomass string
	// Stoich is the flux- and indicator-weighted aggregate stoichiometry.
	Stoich map[string]float64
	// Fluxes records the solved net flux of every contributing reaction.
	Fluxes map[string]float64
	// ActiveNonCore lists the non-core reactions whose indicator-gated
	// contribution survived in the aggregate, sorted by id.
	ActiveNonCore []string
}

// Equation renders the lumped stoichiometry as a reaction string.
func (lr *LumpedReaction) Equation() string {
	ids := make([]string, 0, len(lr.Stoich))
	for id := range lr.Stoich {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var left, right []string
	for _, id := range ids {
		c := lr.Stoich[id]
		if c < 0 {
			left = append(left, fmt.Sprintf("%g %s", -c, id))
		} else {
			right = append(right, fmt.Sprintf("%g %s", c, id))
		}
	}
	return strings.Join(left, " + ") + " --> " + strings.Join(right, " + ")
}

// LumpGEM holds the partitioned network, the indicator variables, and the
// shared thermodynamic formulation.
type LumpGEM struct {
	cfg Config
	tfa *thermo.Model

	biomass []*gem.Reaction
	core    []*gem.Reaction
	nonCore []*gem.Reaction
	// coreMets is the union of metabolites touched by core reactions.
	coreMets map[string]bool

	// indicators maps each non-core reaction id to its binary activity
	// indicator. Created once; stable across lumping calls.
	indicators map[string]opt.Variable
}

// New loads the model and thermodynamic database named by the config and
// builds the lumping problem: partition, indicator variables, uptake
// couplings, and the indicator-sum objective. Load failures are fatal and
// reported immediately.
func New(cfg Config) (*LumpGEM, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	network, err := gem.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	db, err := thermo.LoadDB(cfg.ThermoDBPath)
	if err != nil {
		return nil, err
	}
	return NewFromModel(network, db, cfg)
}

// NewFromModel builds the lumping problem over an already loaded network and
// reference database.
func NewFromModel(network *gem.Model, db *thermo.DB, cfg Config) (*LumpGEM, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lg := &LumpGEM{
		cfg:        cfg,
		tfa:        thermo.NewModel(db, network),
		coreMets:   make(map[string]bool),
		indicators: make(map[string]opt.Variable),
	}
	lg.partition(network)
	if len(lg.core) == 0 {
		log.Warningf("lumpgem: no reaction matched the %d configured core subsystems; the whole network is non-core", len(cfg.CoreSubsystems))
	}
	if err := lg.buildIndicators(); err != nil {
		return nil, err
	}
	lg.buildObjective()
	return lg, nil
}

// partition classifies every reaction into exactly one of biomass, core, and
// non-core. A biomass id match wins over a core subsystem match. Metabolites
// of core reactions are collected as the core metabolite set.
func (lg *LumpGEM) partition(network *gem.Model) {
	isBiomass := make(map[string]bool, len(lg.cfg.BiomassReactions))
	for _, id := range lg.cfg.BiomassReactions {
		isBiomass[id] = true
	}
	isCoreSubsystem := make(map[string]bool, len(lg.cfg.CoreSubsystems))
	for _, name := range lg.cfg.CoreSubsystems {
		isCoreSubsystem[name] = true
	}

	for _, rxn := range network.Reactions {
		switch {
		case isBiomass[rxn.ID]:
			lg.biomass = append(lg.biomass, rxn)
		case isCoreSubsystem[rxn.Subsystem]:
			lg.core = append(lg.core, rxn)
			for metID := range rxn.Stoich {
				lg.coreMets[metID] = true
			}
		default:
			lg.nonCore = append(lg.nonCore, rxn)
		}
	}
}

// buildIndicators creates one binary indicator per non-core reaction and ties
// its bidirectional flux to the carbon uptake bound:
//
//	F + R + C·b ≤ C
//
// The coupling is an upper bound, not a hard gate: with b = 0 the flux is
// still capped at C.
func (lg *LumpGEM) buildIndicators() error {
	prob := lg.tfa.Problem()
	c := lg.cfg.CarbonUptake
	for _, rxn := range lg.nonCore {
		f, r, ok := lg.tfa.FluxVars(rxn.ID)
		if !ok {
			return fmt.Errorf("lumpgem: non-core reaction %q has no flux variables", rxn.ID)
		}
		b := prob.NewBinary(opt.LumpIndicator{}, rxn.ID)
		lg.indicators[rxn.ID] = b
		expr := opt.NewLinearExpr().AddSum(f, r).AddTerm(b, c)
		prob.AddConstraint(opt.UptakeCoupling{}, rxn.ID, expr, opt.NegInf(), c)
	}
	return nil
}

// buildObjective sets the objective to the sum of all indicators, maximized.
// It is built exactly once and reused by every lumping call.
func (lg *LumpGEM) buildObjective() {
	sum := opt.NewLinearExpr()
	for _, rxn := range lg.nonCore {
		sum.Add(lg.indicators[rxn.ID])
	}
	lg.tfa.Problem().Maximize(sum)
}

// RunOptimisation prepares the thermodynamic formulation, exempts every
// non-core reaction from thermodynamic computation, converts, and solves. No
// state is cached between calls; each call re-triggers the full
// prepare/convert/solve cycle. Solver failures propagate as-is.
func (lg *LumpGEM) RunOptimisation(ctx context.Context) (*thermo.Solution, error) {
	if err := lg.tfa.Prepare(); err != nil {
		return nil, err
	}
	for _, rxn := range lg.nonCore {
		rxn.Thermo.Computed = false
	}
	if err := lg.tfa.Convert(); err != nil {
		return nil, err
	}
	return lg.tfa.Optimize(ctx)
}

// LumpReaction solves the model under a transient growth lower bound on the
// given biomass reaction and aggregates the flux solution into one lumped
// reaction: core reactions weighted by flux, non-core reactions weighted by
// flux times their solved indicator. The growth constraint is removed on
// every exit path, including solver failure, so a failed call leaves the
// shared problem unchanged for the next one.
func (lg *LumpGEM) LumpReaction(ctx context.Context, biomassID string) (*LumpedReaction, error) {
	bio, err := lg.biomassReaction(biomassID)
	if err != nil {
		return nil, err
	}
	prob := lg.tfa.Problem()
	fluxExpr, ok := lg.tfa.FluxExpr(bio.ID)
	if !ok {
		return nil, fmt.Errorf("lumpgem: biomass reaction %q has no flux variables", bio.ID)
	}
	growth := prob.AddConstraint(opt.GrowthBound{}, bio.ID, fluxExpr, lg.cfg.GrowthRate, opt.Inf())
	defer prob.RemoveConstraint(growth)

	sol, err := lg.RunOptimisation(ctx)
	if err != nil {
		return nil, fmt.Errorf("lumpgem: lumping %s: %w", bio.ID, err)
	}

	lump := &LumpedReaction{
		Biomass: bio.ID,
		Stoich:  make(map[string]float64),
		Fluxes:  make(map[string]float64),
	}
	for _, rxn := range lg.core {
		flux := sol.Flux(rxn.ID)
		lump.Fluxes[rxn.ID] = flux
		addScaled(lump.Stoich, rxn.Stoich, flux)
	}
	for _, rxn := range lg.nonCore {
		flux := sol.Flux(rxn.ID)
		lump.Fluxes[rxn.ID] = flux
		weight := flux * sol.Primal(lg.indicators[rxn.ID].Name())
		addScaled(lump.Stoich, rxn.Stoich, weight)
		if math.Abs(weight) > contributionTol {
			lump.ActiveNonCore = append(lump.ActiveNonCore, rxn.ID)
		}
	}
	sort.Strings(lump.ActiveNonCore)
	for metID, coeff := range lump.Stoich {
		if math.Abs(coeff) < contributionTol {
			delete(lump.Stoich, metID)
		}
	}
	return lump, nil
}

func (lg *LumpGEM) biomassReaction(id string) (*gem.Reaction, error) {
	for _, rxn := range lg.biomass {
		if rxn.ID == id {
			return rxn, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBiomass, id)
}

func addScaled(dst map[string]float64, stoich map[string]float64, scale float64) {
	if scale == 0 {
		return
	}
	for metID, coeff := range stoich {
		dst[metID] += coeff * scale
	}
}

// BiomassReactions returns the biomass partition in model order.
func (lg *LumpGEM) BiomassReactions() []*gem.Reaction { return lg.biomass }

// CoreReactions returns the core partition in model order.
func (lg *LumpGEM) CoreReactions() []*gem.Reaction { return lg.core }

// NonCoreReactions returns the non-core partition in model order.
func (lg *LumpGEM) NonCoreReactions() []*gem.Reaction { return lg.nonCore }

// CoreMetabolites returns the ids of the metabolites touched by core
// reactions, sorted.
func (lg *LumpGEM) CoreMetabolites() []string {
	ids := make([]string, 0, len(lg.coreMets))
	for id := range lg.coreMets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Indicator returns the binary activity indicator of a non-core reaction.
func (lg *LumpGEM) Indicator(rxnID string) (opt.Variable, bool) {
	v, ok := lg.indicators[rxnID]
	return v, ok
}

// TFA returns the shared thermodynamic formulation.
func (lg *LumpGEM) TFA() *thermo.Model { return lg.tfa }
