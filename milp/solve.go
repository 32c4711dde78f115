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

package milp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

type node struct {
	lower []float64
	upper []float64
}

// Solve runs branch and bound over the model's integer columns, solving one
// LP relaxation per node. The context is checked between node solves; it is
// the only cancellation point.
//
// It returns ErrInfeasible when no integral assignment satisfies the
// constraints, ErrUnbounded when the optimum rests on an artificial ±BigBound
// clamp of an infinite bound, and wraps any numerical failure of the
// underlying simplex as-is.
func (m *Model) Solve(ctx context.Context) (*Solution, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	n := m.NumCols()
	if n == 0 {
		return &Solution{Objective: m.Offset}, nil
	}

	// Internally always minimize.
	cost := make([]float64, n)
	for i, c := range m.Obj {
		if m.Maximize {
			cost[i] = -c
		} else {
			cost[i] = c
		}
	}

	best := (*Solution)(nil)
	bestCost := math.Inf(1)
	stack := []node{{lower: slices.Clone(m.ColLower), upper: slices.Clone(m.ColUpper)}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, f, err := solveRelaxation(cost, m.Rows, nd.lower, nd.upper)
		switch {
		case errors.Is(err, ErrInfeasible):
			continue
		case errors.Is(err, ErrUnbounded):
			return nil, ErrUnbounded
		case err != nil:
			return nil, fmt.Errorf("milp: relaxation failed: %w", err)
		}
		if f >= bestCost-pruneTol {
			continue
		}

		j := m.fractionalCol(x)
		if j < 0 {
			for i, isInt := range m.Integer {
				if isInt {
					x[i] = math.Round(x[i])
				}
			}
			bestCost = f
			best = &Solution{X: x}
			continue
		}

		// Fix the fractional column down, then up. The up branch is pushed
		// last so it is explored first.
		down := node{lower: nd.lower, upper: slices.Clone(nd.upper)}
		down.upper[j] = math.Floor(x[j])
		up := node{lower: slices.Clone(nd.lower), upper: nd.upper}
		up.lower[j] = math.Ceil(x[j])
		stack = append(stack, down, up)
	}

	if best == nil {
		return nil, ErrInfeasible
	}
	if err := m.checkArtificialBounds(best.X); err != nil {
		return nil, err
	}
	obj := bestCost
	if m.Maximize {
		obj = -obj
	}
	best.Objective = obj + m.Offset
	return best, nil
}

// fractionalCol returns the lowest-index integer column whose value is not
// integral within tolerance, or -1.
func (m *Model) fractionalCol(x []float64) int {
	for j, isInt := range m.Integer {
		if !isInt {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if frac > intTol && frac < 1-intTol {
			return j
		}
	}
	return -1
}

// checkArtificialBounds reports ErrUnbounded when the solution rests on the
// BigBound clamp of a bound that the model declared infinite.
func (m *Model) checkArtificialBounds(x []float64) error {
	const rel = 1 - 1e-9
	for j, v := range x {
		if math.IsInf(m.ColUpper[j], 1) && v >= BigBound*rel {
			return ErrUnbounded
		}
		if math.IsInf(m.ColLower[j], -1) && v <= -BigBound*rel {
			return ErrUnbounded
		}
	}
	return nil
}

// stdRow is one equality row of the standard-form program: coeffs·y (+ slack) = rhs.
type stdRow struct {
	cols   []int
	coeffs []float64
	// slack is +1 for a ≤ row, -1 for a ≥ row, 0 for an equality.
	slack int
	rhs   float64
}

// solveRelaxation solves min cost·x subject to the rows and the column bounds,
// with integrality relaxed. The bounded general-form program is rewritten in
// gonum standard form (Ax = b, x ≥ 0): columns are shifted by their lower
// bound, infinite bounds are clamped at ±BigBound, every inequality gains a
// slack column, and each shifted column gets an upper-bound row.
func solveRelaxation(cost []float64, rows []Row, lower, upper []float64) ([]float64, float64, error) {
	n := len(cost)
	lo := make([]float64, n)
	hi := make([]float64, n)
	for j := range cost {
		lo[j] = clamp(lower[j], -BigBound, BigBound)
		hi[j] = clamp(upper[j], -BigBound, BigBound)
		if lo[j] > hi[j]+1e-12 {
			return nil, 0, ErrInfeasible
		}
	}

	var std []stdRow
	for _, r := range rows {
		if len(r.Cols) == 0 {
			if r.Lower > 1e-12 || r.Upper < -1e-12 {
				return nil, 0, ErrInfeasible
			}
			continue
		}
		base := 0.0
		for i, c := range r.Cols {
			base += r.Coeffs[i] * lo[c]
		}
		rlo, rhi := r.Lower-base, r.Upper-base
		switch {
		case !math.IsInf(rlo, 0) && rlo == rhi:
			std = append(std, stdRow{cols: r.Cols, coeffs: r.Coeffs, rhs: rhi})
		default:
			if !math.IsInf(rhi, 1) {
				std = append(std, stdRow{cols: r.Cols, coeffs: r.Coeffs, slack: 1, rhs: rhi})
			}
			if !math.IsInf(rlo, -1) {
				std = append(std, stdRow{cols: r.Cols, coeffs: r.Coeffs, slack: -1, rhs: rlo})
			}
		}
	}
	// Upper bounds of the shifted columns.
	for j := range cost {
		std = append(std, stdRow{cols: []int{j}, coeffs: []float64{1}, slack: 1, rhs: hi[j] - lo[j]})
	}

	nRows := len(std)
	nSlacks := 0
	for _, r := range std {
		if r.slack != 0 {
			nSlacks++
		}
	}
	nCols := n + nSlacks

	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	copy(c, cost)

	slack := n
	for i, r := range std {
		for k, col := range r.cols {
			a.Set(i, col, a.At(i, col)+r.coeffs[k])
		}
		if r.slack != 0 {
			a.Set(i, slack, float64(r.slack))
			slack++
		}
		b[i] = r.rhs
	}

	_, y, err := lp.Simplex(c, a, b, 0, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, 0, ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return nil, 0, ErrUnbounded
	case err != nil:
		return nil, 0, err
	}

	x := make([]float64, n)
	for j := range x {
		x[j] = y[j] + lo[j]
	}
	return x, floats.Dot(cost, x), nil
}
