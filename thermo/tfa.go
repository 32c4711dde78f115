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

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/metabolica/lumpgem/gem"
	"github.com/metabolica/lumpgem/opt"
)

const (
	// dgDisplacement widens every reaction ΔG range by the displacement
	// reachable through metabolite concentrations (RT·ln of the allowed
	// concentration span), kJ/mol.
	dgDisplacement = 20.0

	// dgEpsilon keeps a used direction strictly downhill: forward use
	// requires ΔG ≤ -dgEpsilon.
	dgEpsilon = 1e-3

	// minFluxBigM floors the big-M of the flux-use couplings.
	minFluxBigM = 1000.0
)

// ErrNotPrepared is returned by Convert when Prepare has not run.
var ErrNotPrepared = errors.New("thermo: model must be prepared before conversion")

type reactionThermo struct {
	deltaG float64
	slack  float64
}

// Model couples a metabolic network with thermodynamic reference data and one
// shared optimization problem. The flux structure (forward/backward flux
// variables and metabolite mass balances) is materialized at construction;
// Prepare and Convert manage the thermodynamic layer on top of it.
//
// A Model is a single owned resource: it is not safe for concurrent mutation,
// and callers adding transient constraints through Problem must serialize
// their add/solve/remove cycles.
type Model struct {
	network *gem.Model
	db      *DB
	prob    *opt.Problem

	thermo map[string]reactionThermo
	// converted tracks the thermo constraint rows owned per reaction id, so
	// that repeated conversions replace rather than duplicate them.
	converted map[string][]opt.Constraint
	prepared  bool
}

// NewModel builds the TFA context for the network. The returned model owns a
// fresh optimization problem holding the flux variables and mass-balance
// constraints of every reaction and non-boundary metabolite.
func NewModel(db *DB, network *gem.Model) *Model {
	t := &Model{
		network:   network,
		db:        db,
		prob:      opt.NewProblem(),
		thermo:    make(map[string]reactionThermo),
		converted: make(map[string][]opt.Constraint),
	}
	t.buildFluxStructure()
	return t
}

// Network returns the wrapped metabolic model.
func (t *Model) Network() *gem.Model {
	return t.network
}

// Problem returns the shared optimization problem. Callers may add and remove
// their own constraints and variables against it.
func (t *Model) Problem() *opt.Problem {
	return t.prob
}

func (t *Model) buildFluxStructure() {
	balance := make(map[string]*opt.LinearExpr)
	for _, rxn := range t.network.Reactions {
		// A strictly positive lower bound forces forward flux, a negative
		// upper bound forces backward flux; both carry over to the split.
		f := t.prob.NewVariable(opt.ForwardFlux{}, rxn.ID,
			math.Max(0, rxn.LowerBound), math.Max(0, rxn.UpperBound))
		r := t.prob.NewVariable(opt.BackwardFlux{}, rxn.ID,
			math.Max(0, -rxn.UpperBound), math.Max(0, -rxn.LowerBound))
		for metID, coeff := range rxn.Stoich {
			met, ok := t.network.Metabolite(metID)
			if ok && met.Boundary {
				continue
			}
			e, ok := balance[metID]
			if !ok {
				e = opt.NewLinearExpr()
				balance[metID] = e
			}
			e.AddTerm(f, coeff).AddTerm(r, -coeff)
		}
	}
	metIDs := make([]string, 0, len(balance))
	for id := range balance {
		metIDs = append(metIDs, id)
	}
	sort.Strings(metIDs)
	for _, id := range metIDs {
		t.prob.AddConstraint(opt.MassBalance{}, id, balance[id], 0, 0)
	}
}

// FluxVars returns the forward and backward flux variables of a reaction.
func (t *Model) FluxVars(rxnID string) (f, r opt.Variable, ok bool) {
	f, ok = t.prob.LookupVariable(opt.ForwardFlux{}.Prefix() + rxnID)
	if !ok {
		return f, r, false
	}
	r, ok = t.prob.LookupVariable(opt.BackwardFlux{}.Prefix() + rxnID)
	return f, r, ok
}

// FluxExpr returns the net flux expression (forward − backward) of a reaction.
func (t *Model) FluxExpr(rxnID string) (*opt.LinearExpr, bool) {
	f, r, ok := t.FluxVars(rxnID)
	if !ok {
		return nil, false
	}
	return opt.NewLinearExpr().Add(f).AddTerm(r, -1), true
}

// Prepare estimates the transformed Gibbs energy of every reaction from the
// compound formation energies and sets each reaction's thermodynamic
// computation flag. Drain reactions, reactions touching a boundary species,
// and reactions with a compound missing from the database are marked not
// computed.
func (t *Model) Prepare() error {
	for _, rxn := range t.network.Reactions {
		th, ok := t.estimate(rxn)
		rxn.Thermo.Computed = ok
		if ok {
			t.thermo[rxn.ID] = th
		} else {
			delete(t.thermo, rxn.ID)
		}
	}
	t.prepared = true
	return nil
}

func (t *Model) estimate(rxn *gem.Reaction) (reactionThermo, bool) {
	if len(rxn.Stoich) < 2 {
		return reactionThermo{}, false
	}
	th := reactionThermo{slack: dgDisplacement}
	for metID, coeff := range rxn.Stoich {
		if met, ok := t.network.Metabolite(metID); ok && met.Boundary {
			return reactionThermo{}, false
		}
		cpd, ok := t.db.Compound(metID)
		if !ok {
			return reactionThermo{}, false
		}
		th.deltaG += coeff * cpd.DeltaGf
		th.slack += math.Abs(coeff) * cpd.Uncertainty
	}
	return th, true
}

// Convert materializes the thermodynamic constraint rows for every reaction
// whose computation flag is set, and retires the rows of reactions whose flag
// was cleared since the previous conversion. Constraints added by callers
// through Problem are untouched; Convert owns only the rows it creates.
func (t *Model) Convert() error {
	if !t.prepared {
		return ErrNotPrepared
	}
	for _, rxn := range t.network.Reactions {
		if rxn.Thermo.Computed {
			t.convertReaction(rxn)
			continue
		}
		if rows, ok := t.converted[rxn.ID]; ok {
			for _, c := range rows {
				t.prob.RemoveConstraint(c)
			}
			delete(t.converted, rxn.ID)
			// Fix the orphaned use markers so they add no branching work.
			if fu, ok := t.prob.LookupVariable(opt.ForwardUse{}.Prefix() + rxn.ID); ok {
				fu.SetBounds(0, 0)
			}
			if bu, ok := t.prob.LookupVariable(opt.BackwardUse{}.Prefix() + rxn.ID); ok {
				bu.SetBounds(0, 0)
			}
		}
	}
	return nil
}

func (t *Model) convertReaction(rxn *gem.Reaction) {
	th := t.thermo[rxn.ID]
	f, r, _ := t.FluxVars(rxn.ID)

	dg := t.prob.EnsureVariable(opt.DeltaG{}, rxn.ID, th.deltaG-th.slack, th.deltaG+th.slack)
	fu := t.prob.EnsureBinary(opt.ForwardUse{}, rxn.ID)
	bu := t.prob.EnsureBinary(opt.BackwardUse{}, rxn.ID)

	fluxM := math.Max(minFluxBigM, math.Max(math.Abs(rxn.LowerBound), math.Abs(rxn.UpperBound)))
	dgM := math.Max(minFluxBigM, math.Abs(th.deltaG)+th.slack+1)

	rows := []opt.Constraint{
		// Flux only through a used direction: v ≤ M·use.
		t.prob.EnsureConstraint(opt.ForwardUseCoupling{}, rxn.ID,
			opt.NewLinearExpr().Add(f).AddTerm(fu, -fluxM), opt.NegInf(), 0),
		t.prob.EnsureConstraint(opt.BackwardUseCoupling{}, rxn.ID,
			opt.NewLinearExpr().Add(r).AddTerm(bu, -fluxM), opt.NegInf(), 0),
		// A used direction must be downhill: ΔG + M·FU ≤ M − ε and
		// −ΔG + M·BU ≤ M − ε.
		t.prob.EnsureConstraint(opt.ForwardDeltaGCoupling{}, rxn.ID,
			opt.NewLinearExpr().Add(dg).AddTerm(fu, dgM), opt.NegInf(), dgM-dgEpsilon),
		t.prob.EnsureConstraint(opt.BackwardDeltaGCoupling{}, rxn.ID,
			opt.NewLinearExpr().AddTerm(dg, -1).AddTerm(bu, dgM), opt.NegInf(), dgM-dgEpsilon),
		// At most one direction in use.
		t.prob.EnsureConstraint(opt.SimultaneousUse{}, rxn.ID,
			opt.NewLinearExpr().AddSum(fu, bu), opt.NegInf(), 1),
	}
	t.converted[rxn.ID] = rows
}

// Optimize exports the problem and solves it, returning the primal solution.
// Solver failures (infeasibility, unboundedness, numerical breakdown) are
// propagated as-is; nothing is retried or cached.
func (t *Model) Optimize(ctx context.Context) (*Solution, error) {
	m, err := t.prob.Export()
	if err != nil {
		return nil, err
	}
	sol, err := m.Solve(ctx)
	if err != nil {
		return nil, err
	}

	primals := make(map[string]float64, t.prob.VariableCount())
	for i := 0; i < t.prob.VariableCount(); i++ {
		// Variables are append-only, so index order matches export order.
		v, _ := t.prob.VariableAt(i)
		primals[v.Name()] = sol.X[i]
	}
	fluxes := make(map[string]float64, len(t.network.Reactions))
	for _, rxn := range t.network.Reactions {
		fwd := primals[opt.ForwardFlux{}.Prefix()+rxn.ID]
		bwd := primals[opt.BackwardFlux{}.Prefix()+rxn.ID]
		fluxes[rxn.ID] = fwd - bwd
	}
	return &Solution{Objective: sol.Objective, primals: primals, fluxes: fluxes}, nil
}
