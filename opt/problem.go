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

// Package opt offers a small API to build mixed-integer linear problems.
//
// The `Problem` struct owns the variables and constraints of one optimization
// problem. The `Variable` and `Constraint` structs are cheap references into a
// Problem and stay valid for its lifetime; removing a constraint never
// invalidates other references. The `LinearExpr` struct builds expressions
// with many variables and coefficients for constraints and the objective.
//
// A Problem is not safe for concurrent mutation. It is a single owned
// resource: every component that adds or removes variables and constraints
// must do so from one goroutine at a time.
package opt

import (
	"errors"
	"fmt"
	"math"

	"github.com/metabolica/lumpgem/milp"
)

// ErrMixedProblems holds the error when elements added to a problem belong to
// a different problem.
var ErrMixedProblems = errors.New("elements are not part of the same problem")

type (
	// VarIndex is the index of a variable in the problem.
	VarIndex int32
	// ConsIndex is the index of a constraint in the problem.
	ConsIndex int32
)

// Variable is a reference to a variable in a Problem.
type Variable struct {
	ind VarIndex
	p   *Problem
}

// Name returns the full (prefixed) name of the variable.
func (v Variable) Name() string {
	return v.p.vars[v.ind].name
}

// Index returns the index of the variable.
func (v Variable) Index() VarIndex {
	return v.ind
}

// Bounds returns the lower and upper bound of the variable.
func (v Variable) Bounds() (lb, ub float64) {
	d := v.p.vars[v.ind]
	return d.lb, d.ub
}

// SetBounds replaces the bounds of the variable.
func (v Variable) SetBounds(lb, ub float64) {
	v.p.vars[v.ind].lb = lb
	v.p.vars[v.ind].ub = ub
}

func (v Variable) addToLinearExpr(e *LinearExpr, c float64) {
	e.terms = append(e.terms, term{ind: v.ind, coeff: c})
	e.adoptOwner(v.p)
}

// Constraint is a reference to a constraint in a Problem.
type Constraint struct {
	ind ConsIndex
	p   *Problem
}

// Name returns the full (prefixed) name of the constraint.
func (c Constraint) Name() string {
	return c.p.cons[c.ind].name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConsIndex {
	return c.ind
}

type varData struct {
	name    string
	lb, ub  float64
	integer bool
}

type consData struct {
	name    string
	terms   []term
	lb, ub  float64
	removed bool
}

// Problem accumulates variables, linear constraints and an objective, and
// exports them as a solver-ready milp.Model.
type Problem struct {
	vars       []varData
	cons       []consData
	varByName  map[string]VarIndex
	consByName map[string]ConsIndex

	objTerms  []term
	objOffset float64
	objMax    bool

	// The first and only the first error is reported by Export.
	err error
}

// NewProblem creates and returns a new empty Problem.
func NewProblem() *Problem {
	return &Problem{
		varByName:  make(map[string]VarIndex),
		consByName: make(map[string]ConsIndex),
	}
}

func (p *Problem) setErrf(format string, a ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, a...)
	}
}

// NewVariable creates a new continuous variable with bounds `[lb,ub]`. The
// full variable name is the kind prefix followed by `name` and must be unique
// within the problem; declaring it twice records an error reported by Export.
func (p *Problem) NewVariable(kind VarKind, name string, lb, ub float64) Variable {
	full := kind.Prefix() + name
	if ind, ok := p.varByName[full]; ok {
		p.setErrf("variable %q declared twice", full)
		return Variable{ind: ind, p: p}
	}
	return p.appendVariable(varData{name: full, lb: lb, ub: ub})
}

// NewBinary creates a new binary variable with domain {0,1}.
func (p *Problem) NewBinary(kind VarKind, name string) Variable {
	full := kind.Prefix() + name
	if ind, ok := p.varByName[full]; ok {
		p.setErrf("variable %q declared twice", full)
		return Variable{ind: ind, p: p}
	}
	return p.appendVariable(varData{name: full, lb: 0, ub: 1, integer: true})
}

// EnsureVariable returns the continuous variable with the given kind and name,
// creating it if absent and updating its bounds if present.
func (p *Problem) EnsureVariable(kind VarKind, name string, lb, ub float64) Variable {
	full := kind.Prefix() + name
	if ind, ok := p.varByName[full]; ok {
		p.vars[ind].lb = lb
		p.vars[ind].ub = ub
		return Variable{ind: ind, p: p}
	}
	return p.appendVariable(varData{name: full, lb: lb, ub: ub})
}

// EnsureBinary returns the binary variable with the given kind and name,
// creating it if absent and restoring the {0,1} domain if present.
func (p *Problem) EnsureBinary(kind VarKind, name string) Variable {
	full := kind.Prefix() + name
	if ind, ok := p.varByName[full]; ok {
		p.vars[ind].lb = 0
		p.vars[ind].ub = 1
		return Variable{ind: ind, p: p}
	}
	return p.appendVariable(varData{name: full, lb: 0, ub: 1, integer: true})
}

func (p *Problem) appendVariable(d varData) Variable {
	ind := VarIndex(len(p.vars))
	p.vars = append(p.vars, d)
	p.varByName[d.name] = ind
	return Variable{ind: ind, p: p}
}

// VariableAt returns the variable at index `i`. Variables are append-only, so
// indices are stable and match the column order of the exported model.
func (p *Problem) VariableAt(i int) (Variable, bool) {
	if i < 0 || i >= len(p.vars) {
		return Variable{}, false
	}
	return Variable{ind: VarIndex(i), p: p}, true
}

// LookupVariable returns the variable with the given full name.
func (p *Problem) LookupVariable(full string) (Variable, bool) {
	ind, ok := p.varByName[full]
	if !ok {
		return Variable{}, false
	}
	return Variable{ind: ind, p: p}, true
}

// AddConstraint registers the linear constraint `lb <= expr <= ub` and returns
// a reference to it. The full constraint name is the kind prefix followed by
// `name`; registering a live constraint under an existing name records an
// error reported by Export.
func (p *Problem) AddConstraint(kind ConsKind, name string, expr *LinearExpr, lb, ub float64) Constraint {
	full := kind.Prefix() + name
	if _, ok := p.consByName[full]; ok {
		p.setErrf("constraint %q declared twice", full)
	}
	return p.appendConstraint(full, expr, lb, ub)
}

// EnsureConstraint registers the linear constraint `lb <= expr <= ub`,
// replacing any live constraint with the same full name.
func (p *Problem) EnsureConstraint(kind ConsKind, name string, expr *LinearExpr, lb, ub float64) Constraint {
	full := kind.Prefix() + name
	if ind, ok := p.consByName[full]; ok {
		p.cons[ind].removed = true
		delete(p.consByName, full)
	}
	return p.appendConstraint(full, expr, lb, ub)
}

func (p *Problem) appendConstraint(full string, expr *LinearExpr, lb, ub float64) Constraint {
	if expr.mixed || (expr.owner != nil && expr.owner != p) {
		p.setErrf("constraint %q: %w", full, ErrMixedProblems)
	}
	ind := ConsIndex(len(p.cons))
	p.cons = append(p.cons, consData{
		name:  full,
		terms: expr.collapsed(),
		lb:    lb - expr.offset,
		ub:    ub - expr.offset,
	})
	p.consByName[full] = ind
	return Constraint{ind: ind, p: p}
}

// RemoveConstraint deactivates the constraint. Removing an already removed
// constraint has no effect. The constraint's slot is never reused, so other
// Constraint references stay valid.
func (p *Problem) RemoveConstraint(c Constraint) {
	if c.p != p {
		p.setErrf("removed constraint: %w", ErrMixedProblems)
		return
	}
	d := &p.cons[c.ind]
	if d.removed {
		return
	}
	d.removed = true
	if ind, ok := p.consByName[d.name]; ok && ind == c.ind {
		delete(p.consByName, d.name)
	}
}

// LookupConstraint returns the live constraint with the given full name.
func (p *Problem) LookupConstraint(full string) (Constraint, bool) {
	ind, ok := p.consByName[full]
	if !ok {
		return Constraint{}, false
	}
	return Constraint{ind: ind, p: p}, true
}

// VariableCount returns the number of variables in the problem.
func (p *Problem) VariableCount() int {
	return len(p.vars)
}

// ConstraintCount returns the number of live (not removed) constraints.
func (p *Problem) ConstraintCount() int {
	n := 0
	for _, c := range p.cons {
		if !c.removed {
			n++
		}
	}
	return n
}

// Maximize sets a linear maximization objective, replacing any previous
// objective.
func (p *Problem) Maximize(obj LinearArgument) {
	p.setObjective(obj, true)
}

// Minimize sets a linear minimization objective, replacing any previous
// objective.
func (p *Problem) Minimize(obj LinearArgument) {
	p.setObjective(obj, false)
}

func (p *Problem) setObjective(obj LinearArgument, maximize bool) {
	e := NewLinearExpr().Add(obj)
	if e.mixed || (e.owner != nil && e.owner != p) {
		p.setErrf("objective: %w", ErrMixedProblems)
	}
	p.objTerms = e.collapsed()
	p.objOffset = e.offset
	p.objMax = maximize
}

// Export builds the solver-ready model from the live constraints. It returns
// an error when invalid parameters have been used during problem building
// (e.g. passing variables from other problems).
func (p *Problem) Export() (*milp.Model, error) {
	if p.err != nil {
		return nil, p.err
	}

	n := len(p.vars)
	m := &milp.Model{
		Maximize: p.objMax,
		Offset:   p.objOffset,
		Obj:      make([]float64, n),
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
		Integer:  make([]bool, n),
	}
	for i, v := range p.vars {
		m.ColLower[i] = v.lb
		m.ColUpper[i] = v.ub
		m.Integer[i] = v.integer
	}
	for _, t := range p.objTerms {
		m.Obj[t.ind] += t.coeff
	}
	for _, c := range p.cons {
		if c.removed {
			continue
		}
		cols := make([]int, 0, len(c.terms))
		coeffs := make([]float64, 0, len(c.terms))
		for _, t := range c.terms {
			cols = append(cols, int(t.ind))
			coeffs = append(coeffs, t.coeff)
		}
		m.AddRow(c.lb, cols, coeffs, c.ub)
	}
	return m, nil
}

// Inf returns positive infinity, for use as an absent bound.
func Inf() float64 { return math.Inf(1) }

// NegInf returns negative infinity, for use as an absent bound.
func NegInf() float64 { return math.Inf(-1) }
