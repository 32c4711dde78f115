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

// Package milp solves mixed-integer linear programs in process.
//
// The model solves problems of the form:
//
//	Minimize (or Maximize): Obj · x + Offset
//	Subject to:             Row.Lower ≤ Row · x ≤ Row.Upper
//	And:                    ColLower ≤ x ≤ ColUpper
//
// with selected columns restricted to integer values. LP relaxations are
// solved with gonum's simplex implementation; integrality is recovered by
// branch and bound on the integer columns. Given an identical model, Solve is
// deterministic.
package milp

import (
	"errors"
	"math"
)

// Sentinel solve failures. Both are terminal: the solver does not retry.
var (
	ErrInfeasible = errors.New("milp: problem is infeasible")
	ErrUnbounded  = errors.New("milp: problem is unbounded")
)

const (
	// BigBound stands in for an infinite variable bound. Solutions resting on
	// it are reported as unbounded.
	BigBound = 1e6

	intTol   = 1e-6
	pruneTol = 1e-9
)

// Row is one linear constraint, stored sparsely as parallel column-index and
// coefficient slices.
type Row struct {
	Cols   []int
	Coeffs []float64
	Lower  float64
	Upper  float64
}

// Model is a mixed-integer linear program.
type Model struct {
	// Maximize indicates whether to maximize (true) or minimize (false).
	Maximize bool

	// Offset is a constant added to the objective function.
	Offset float64

	// Obj holds the objective coefficient of each column.
	Obj []float64

	// ColLower and ColUpper bound each column. Infinities are allowed and are
	// clamped at ±BigBound when solving.
	ColLower []float64
	ColUpper []float64

	// Integer marks the columns restricted to integer values.
	Integer []bool

	// Rows are the linear constraints.
	Rows []Row
}

// AddRow appends the constraint `lower ≤ Σ coeffs·x[cols] ≤ upper`.
func (m *Model) AddRow(lower float64, cols []int, coeffs []float64, upper float64) {
	m.Rows = append(m.Rows, Row{Cols: cols, Coeffs: coeffs, Lower: lower, Upper: upper})
}

// NumCols returns the number of columns in the model.
func (m *Model) NumCols() int {
	return len(m.Obj)
}

func (m *Model) validate() error {
	n := len(m.Obj)
	if len(m.ColLower) != n || len(m.ColUpper) != n || len(m.Integer) != n {
		return errors.New("milp: column slices have inconsistent lengths")
	}
	for _, r := range m.Rows {
		if len(r.Cols) != len(r.Coeffs) {
			return errors.New("milp: row cols and coeffs have inconsistent lengths")
		}
		for _, c := range r.Cols {
			if c < 0 || c >= n {
				return errors.New("milp: row references a column out of range")
			}
		}
	}
	return nil
}

// Solution is the primal assignment returned by Solve.
type Solution struct {
	Objective float64
	X         []float64
}

// Value returns the solution value of column `col`.
func (s *Solution) Value(col int) float64 {
	return s.X[col]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
