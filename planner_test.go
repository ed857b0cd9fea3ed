/*
   Copyright 2020 Joseph Cumines

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package txplan

import (
	"context"
	"strings"
	"testing"
)

func newTestPlanner(limit int) *Planner {
	return NewPlanner(PlannerConfig{
		Budget:        strBudget(limit),
		CreateMessage: func(context.Context) (Message, error) { return Message(strMessage("")), nil },
	})
}

func rep(n int) string { return strings.Repeat("x", n) }

// TestPlanner_sequentialMerge covers spec.md's scenario of a divisible
// Sequential whose children together fit one message, collapsing to Single.
func TestPlanner_sequentialMerge(t *testing.T) {
	pl := newTestPlanner(101) // reserve byte headroom matches linear packer's convention elsewhere
	plan := NewSequential(rep(50), rep(50))
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsSingle() {
		t.Fatalf("expected Single, got %s", out.Kind())
	}
	if len(out.Message().(strMessage)) != 100 {
		t.Fatalf("expected 100 bytes merged, got %d", len(out.Message().(strMessage)))
	}
}

// TestPlanner_sequentialSplitsAndChains covers the 3-child Sequential that
// doesn't all fit in one message, but whose tail two elements chain onto a
// fresh candidate.
func TestPlanner_sequentialSplitsAndChains(t *testing.T) {
	pl := newTestPlanner(101)
	plan := NewSequential(rep(60), rep(50), rep(50))
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsSequential() || !out.Divisible() {
		t.Fatalf("expected divisible Sequential, got %+v", out)
	}
	children := out.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d: %+v", len(children), children)
	}
	if !children[0].IsSingle() || len(children[0].Message().(strMessage)) != 60 {
		t.Fatalf("expected first child Single(60 bytes), got %+v", children[0])
	}
	if !children[1].IsSingle() || len(children[1].Message().(strMessage)) != 100 {
		t.Fatalf("expected second child Single(100 bytes, B+C merged), got %+v", children[1])
	}
}

// TestPlanner_parallelWithTrailingPacker covers a Parallel whose Single
// children fill most of two messages and a linear MessagePacker mops up the
// remaining free capacity before spilling into a third message of its own.
func TestPlanner_parallelWithTrailingPacker(t *testing.T) {
	pl := newTestPlanner(101)
	plan := NewParallel(
		rep(75),
		rep(50),
		NewMessagePackerPlan(NewLinearPacker(125, func(offset, length int) Instruction {
			return rep(length)
		})),
	)
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsParallel() {
		t.Fatalf("expected Parallel, got %s", out.Kind())
	}
	children := out.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d: %+v", len(children), children)
	}
	sizes := make([]int, len(children))
	for i, c := range children {
		if !c.IsSingle() {
			t.Fatalf("expected child %d to be Single, got %s", i, c.Kind())
		}
		sizes[i] = len(c.Message().(strMessage))
	}
	if sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("expected sizes [100 100 50], got %v", sizes)
	}
}

// TestPlanner_nonDivisibleSiblingsMergeWhenTheyFit covers two non-divisible
// Sequential subtrees, each individually atomic, collapsing into a single
// message when their combined size fits.
func TestPlanner_nonDivisibleSiblingsMergeWhenTheyFit(t *testing.T) {
	pl := newTestPlanner(101)
	plan := NewParallel(
		NewNonDivisibleSequential(rep(20), rep(20)),
		NewNonDivisibleSequential(rep(20), rep(20)),
	)
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsSingle() {
		t.Fatalf("expected Single, got %s: %+v", out.Kind(), out)
	}
	if len(out.Message().(strMessage)) != 80 {
		t.Fatalf("expected 80 bytes merged, got %d", len(out.Message().(strMessage)))
	}
}

// TestPlanner_nonDivisibleSiblingsStaySplitWhenTooLarge mirrors the previous
// case but with payloads too large to share one message, so each
// non-divisible subtree gets its own.
func TestPlanner_nonDivisibleSiblingsStaySplitWhenTooLarge(t *testing.T) {
	pl := newTestPlanner(101)
	plan := NewParallel(
		NewNonDivisibleSequential(rep(40), rep(40)),
		NewNonDivisibleSequential(rep(40), rep(40)),
	)
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsParallel() {
		t.Fatalf("expected Parallel, got %s", out.Kind())
	}
	children := out.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	for i, c := range children {
		if !c.IsSingle() || len(c.Message().(strMessage)) != 80 {
			t.Errorf("child %d: expected Single(80 bytes), got %+v", i, c)
		}
	}
}

func TestPlanner_emptyInstructionPlan(t *testing.T) {
	pl := newTestPlanner(101)
	_, err := pl.Plan(context.Background(), NewSequential())
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*EmptyInstructionPlanError); !ok {
		t.Fatalf("expected *EmptyInstructionPlanError, got %T", err)
	}
}

func TestPlanner_singleInstructionTooLargeForAnyMessage(t *testing.T) {
	pl := newTestPlanner(10)
	_, err := pl.Plan(context.Background(), NewSingle(rep(20)))
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*MessageCannotAccommodatePlanError); !ok {
		t.Fatalf("expected *MessageCannotAccommodatePlanError, got %T", err)
	}
}

func TestPlanner_pathsAreStableAndPositional(t *testing.T) {
	pl := newTestPlanner(101)
	plan := NewParallel(rep(75), rep(50))
	out, err := pl.Plan(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Path() != "0" {
		t.Fatalf("expected root path '0', got %q", out.Path())
	}
	for i, c := range out.Children() {
		want := "0/" + string(rune('0'+i))
		if c.Path() != want {
			t.Errorf("child %d: expected path %q, got %q", i, want, c.Path())
		}
	}
}

func TestPlanner_onMessageUpdatedHookInvokedPerAppend(t *testing.T) {
	calls := 0
	pl := NewPlanner(PlannerConfig{
		Budget:        strBudget(101),
		CreateMessage: func(context.Context) (Message, error) { return Message(strMessage("")), nil },
		OnMessageUpdated: func(ctx context.Context, msg Message) (Message, error) {
			calls++
			return msg, nil
		},
	})
	_, err := pl.Plan(context.Background(), NewSequential(rep(10), rep(10)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls == 0 {
		t.Fatalf("expected OnMessageUpdated to be invoked")
	}
}
