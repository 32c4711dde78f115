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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const tol = 1e-6

func TestSolve_EmptyModel(t *testing.T) {
	m := &Model{Offset: 3.5}

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	if got.Objective != 3.5 {
		t.Errorf("Solve() objective = %v, want 3.5", got.Objective)
	}
}

func TestSolve_LinearProgram(t *testing.T) {
	// Maximize 3x + 4y subject to x + 2y <= 14, 3x - y >= 0, x - y <= 2.
	// The unique optimum is (6, 4) with objective 34.
	m := &Model{
		Maximize: true,
		Obj:      []float64{3, 4},
		ColLower: []float64{0, 0},
		ColUpper: []float64{20, 20},
		Integer:  []bool{false, false},
	}
	m.AddRow(math.Inf(-1), []int{0, 1}, []float64{1, 2}, 14)
	m.AddRow(0, []int{0, 1}, []float64{3, -1}, math.Inf(1))
	m.AddRow(math.Inf(-1), []int{0, 1}, []float64{1, -1}, 2)

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	want := &Solution{Objective: 34, X: []float64{6, 4}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("Solve() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestSolve_MinimizeWithOffset(t *testing.T) {
	// Minimize x + y subject to x + y >= 3, with objective offset 10.
	m := &Model{
		Obj:      []float64{1, 1},
		Offset:   10,
		ColLower: []float64{0, 0},
		ColUpper: []float64{5, 5},
		Integer:  []bool{false, false},
	}
	m.AddRow(3, []int{0, 1}, []float64{1, 1}, math.Inf(1))

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	if math.Abs(got.Objective-13) > tol {
		t.Errorf("Solve() objective = %v, want 13", got.Objective)
	}
}

func TestSolve_BinaryKnapsack(t *testing.T) {
	// Maximize 5a + 4b + 3c subject to 2a + 3b + c <= 3, all binary.
	// The optimum picks a and c for objective 8.
	m := &Model{
		Maximize: true,
		Obj:      []float64{5, 4, 3},
		ColLower: []float64{0, 0, 0},
		ColUpper: []float64{1, 1, 1},
		Integer:  []bool{true, true, true},
	}
	m.AddRow(math.Inf(-1), []int{0, 1, 2}, []float64{2, 3, 1}, 3)

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	want := &Solution{Objective: 8, X: []float64{1, 0, 1}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("Solve() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestSolve_BranchingRequired(t *testing.T) {
	// Maximize x subject to 2x <= 5 with x integer. The relaxation optimum
	// is 2.5; branching must land on 2.
	m := &Model{
		Maximize: true,
		Obj:      []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{10},
		Integer:  []bool{true},
	}
	m.AddRow(math.Inf(-1), []int{0}, []float64{2}, 5)

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	want := &Solution{Objective: 2, X: []float64{2}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("Solve() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestSolve_EqualityRow(t *testing.T) {
	// Minimize x + 2y subject to x + y = 4.
	m := &Model{
		Obj:      []float64{1, 2},
		ColLower: []float64{0, 0},
		ColUpper: []float64{10, 10},
		Integer:  []bool{false, false},
	}
	m.AddRow(4, []int{0, 1}, []float64{1, 1}, 4)

	got, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	want := &Solution{Objective: 4, X: []float64{4, 0}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("Solve() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestSolve_Infeasible(t *testing.T) {
	testCases := []struct {
		desc  string
		build func() *Model
	}{
		{
			desc: "conflicting column bounds",
			build: func() *Model {
				return &Model{
					Obj:      []float64{1},
					ColLower: []float64{2},
					ColUpper: []float64{1},
					Integer:  []bool{false},
				}
			},
		},
		{
			desc: "row outside column bounds",
			build: func() *Model {
				m := &Model{
					Obj:      []float64{1},
					ColLower: []float64{0},
					ColUpper: []float64{1},
					Integer:  []bool{false},
				}
				m.AddRow(2, []int{0}, []float64{1}, math.Inf(1))
				return m
			},
		},
		{
			desc: "no integral point",
			build: func() *Model {
				// 0.4 <= x <= 0.6 with x integer.
				m := &Model{
					Obj:      []float64{1},
					ColLower: []float64{0},
					ColUpper: []float64{1},
					Integer:  []bool{true},
				}
				m.AddRow(0.4, []int{0}, []float64{1}, 0.6)
				return m
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.desc, func(t *testing.T) {
			_, err := test.build().Solve(context.Background())
			if !errors.Is(err, ErrInfeasible) {
				t.Errorf("Solve() returned error %v, want ErrInfeasible", err)
			}
		})
	}
}

func TestSolve_Unbounded(t *testing.T) {
	// Maximize x with no upper bound.
	m := &Model{
		Maximize: true,
		Obj:      []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{math.Inf(1)},
		Integer:  []bool{false},
	}

	_, err := m.Solve(context.Background())
	if !errors.Is(err, ErrUnbounded) {
		t.Errorf("Solve() returned error %v, want ErrUnbounded", err)
	}
}

func TestSolve_CancelledContext(t *testing.T) {
	m := &Model{
		Obj:      []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{1},
		Integer:  []bool{false},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Solve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Solve() returned error %v, want context.Canceled", err)
	}
}

func TestSolve_InconsistentModel(t *testing.T) {
	m := &Model{
		Obj:      []float64{1, 1},
		ColLower: []float64{0},
		ColUpper: []float64{1},
		Integer:  []bool{false},
	}

	if _, err := m.Solve(context.Background()); err == nil {
		t.Error("Solve() succeeded on a model with inconsistent column slices, want error")
	}
}

func TestSolve_Deterministic(t *testing.T) {
	// Two symmetric binaries, only one fits. Repeated solves must pick the
	// same one.
	build := func() *Model {
		m := &Model{
			Maximize: true,
			Obj:      []float64{1, 1},
			ColLower: []float64{0, 0},
			ColUpper: []float64{1, 1},
			Integer:  []bool{true, true},
		}
		m.AddRow(math.Inf(-1), []int{0, 1}, []float64{1, 1}, 1)
		return m
	}

	first, err := build().Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := build().Solve(context.Background())
		if err != nil {
			t.Fatalf("Solve() returned error: %v", err)
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("repeated Solve() returned with unexpected diff (-want+got);\n%s", diff)
		}
	}
}
