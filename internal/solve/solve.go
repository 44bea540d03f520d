// SPDX-License-Identifier: MIT

// Package solve picks minimum-cost binary selections for weighted covering
// problems. The LP relaxation is solved with gonum's simplex and driven to
// integrality by branch and bound on fractional variables.
package solve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrInfeasible is returned when no selection can satisfy every cover row.
var ErrInfeasible = errors.New("no feasible selection")

const (
	intTol  = 1e-6
	gapTol  = 1e-9
	nodeCap = 100000
)

// Problem is a binary covering problem: pick a subset of variables
// minimizing total cost such that every cover row contains at least one
// picked variable. Costs may be negative when a variable carries a bonus;
// such variables are picked even without a row forcing them.
type Problem struct {
	Costs  []float64
	Covers [][]int
}

// Solution reports the picked variables and the cost sum over them,
// recomputed from Costs rather than read off the LP.
type Solution struct {
	Selected  []bool
	Objective float64
}

const (
	varFree int8 = iota - 1
	varZero
	varOne
)

// Binary solves p to integrality. Depth-first branch and bound: each node
// solves the LP relaxation with branched variables substituted out, prunes
// on infeasibility and on bound, and branches on the most fractional
// variable taking the 1-branch first. Search stops at nodeCap nodes and
// returns the best incumbent found by then.
func Binary(p Problem) (Solution, error) {
	n := len(p.Costs)
	for i, row := range p.Covers {
		for _, j := range row {
			if j < 0 || j >= n {
				return Solution{}, fmt.Errorf("cover row %d references variable %d outside the problem", i, j)
			}
		}
	}
	if n == 0 {
		if len(p.Covers) > 0 {
			return Solution{}, ErrInfeasible
		}
		return Solution{Selected: []bool{}, Objective: 0}, nil
	}

	root := make([]int8, n)
	for j := range root {
		root[j] = varFree
	}

	var (
		best    []bool
		bestObj = math.Inf(1)
		stack   = [][]int8{root}
		nodes   int
	)

	for len(stack) > 0 && nodes < nodeCap {
		nodes++
		fixed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rel, feasible := relax(p, fixed)
		if !feasible || rel.objective >= bestObj-gapTol {
			continue
		}

		branch := mostFractional(rel.x)
		if branch < 0 {
			selected := make([]bool, n)
			for j, f := range fixed {
				selected[j] = f == varOne
			}
			for rj, x := range rel.x {
				if x > 0.5 {
					selected[rel.vars[rj]] = true
				}
			}
			best = selected
			bestObj = rel.objective
			continue
		}

		j := rel.vars[branch]
		zeroBranch := append([]int8(nil), fixed...)
		zeroBranch[j] = varZero
		oneBranch := append([]int8(nil), fixed...)
		oneBranch[j] = varOne
		stack = append(stack, zeroBranch, oneBranch)
	}

	if best == nil {
		return Solution{}, ErrInfeasible
	}

	var obj float64
	for j, sel := range best {
		if sel {
			obj += p.Costs[j]
		}
	}
	return Solution{Selected: best, Objective: obj}, nil
}

// relaxation is one node's LP result in the reduced variable space.
type relaxation struct {
	vars      []int
	x         []float64
	objective float64
}

// relax substitutes the fixed assignment into p and solves the remaining
// LP. Rows covered by a fixed-one variable drop out; a row left with no
// free variable makes the node infeasible.
func relax(p Problem, fixed []int8) (relaxation, bool) {
	n := len(p.Costs)
	vars := make([]int, 0, n)
	col := make([]int, n)
	for j := 0; j < n; j++ {
		col[j] = -1
		if fixed[j] == varFree {
			col[j] = len(vars)
			vars = append(vars, j)
		}
	}

	var fixedCost float64
	for j := 0; j < n; j++ {
		if fixed[j] == varOne {
			fixedCost += p.Costs[j]
		}
	}

	var rows [][]int
	for _, row := range p.Covers {
		covered := false
		var freeInRow []int
		for _, j := range row {
			if fixed[j] == varOne {
				covered = true
				break
			}
			if fixed[j] == varFree {
				freeInRow = append(freeInRow, col[j])
			}
		}
		if covered {
			continue
		}
		if len(freeInRow) == 0 {
			return relaxation{}, false
		}
		rows = append(rows, freeInRow)
	}

	if len(vars) == 0 {
		return relaxation{vars: vars, objective: fixedCost}, true
	}

	costs := make([]float64, len(vars))
	for i, j := range vars {
		costs[i] = p.Costs[j]
	}
	x, lpObj, err := solveLP(costs, rows)
	if err != nil {
		return relaxation{}, false
	}
	return relaxation{vars: vars, x: x, objective: fixedCost + lpObj}, true
}

// solveLP minimizes costsᵀx over the [0,1] box subject to the cover rows,
// expressed in general inequality form and converted for the simplex.
func solveLP(costs []float64, rows [][]int) ([]float64, float64, error) {
	n := len(costs)
	m := len(rows)

	g := mat.NewDense(m+2*n, n, nil)
	h := make([]float64, m+2*n)
	for i, row := range rows {
		for _, j := range row {
			g.Set(i, j, -1)
		}
		h[i] = -1
	}
	for j := 0; j < n; j++ {
		g.Set(m+j, j, 1)
		h[m+j] = 1
		g.Set(m+n+j, j, -1)
		h[m+n+j] = 0
	}

	cNew, aNew, bNew := lp.Convert(costs, g, h, nil, nil)
	obj, xNew, err := lp.Simplex(cNew, aNew, bNew, 1e-10, nil)
	if err != nil {
		return nil, 0, err
	}

	// Convert splits each free variable into a positive and negative part;
	// recover the original values from the first two blocks.
	x := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = xNew[j] - xNew[n+j]
	}
	return x, obj, nil
}

// mostFractional returns the index of the variable farthest from either
// bound, or -1 when every value is integral within tolerance.
func mostFractional(x []float64) int {
	best, bestFrac := -1, intTol
	for j, v := range x {
		if frac := math.Min(v, 1-v); frac > bestFrac {
			best, bestFrac = j, frac
		}
	}
	return best
}
