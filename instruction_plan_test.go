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

import "testing"

func TestNewSingle(t *testing.T) {
	p := NewSingle("ix1")
	if !p.IsSingle() || p.IsLeaf() != true {
		t.Fatalf("expected single leaf, got kind=%s leaf=%v", p.Kind(), p.IsLeaf())
	}
	if p.Instruction() != "ix1" {
		t.Fatalf("unexpected instruction: %v", p.Instruction())
	}
	if len(p.Children()) != 0 {
		t.Fatalf("expected no children, got %d", len(p.Children()))
	}
}

func TestNewParallel_autoWrapsBareInstructions(t *testing.T) {
	p := NewParallel("a", NewSingle("b"), "c")
	if !p.IsParallel() {
		t.Fatalf("expected parallel, got %s", p.Kind())
	}
	children := p.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	for i, want := range []string{"a", "b", "c"} {
		if !children[i].IsSingle() || children[i].Instruction() != want {
			t.Errorf("child %d: expected Single(%s), got %s(%v)", i, want, children[i].Kind(), children[i].Instruction())
		}
	}
}

func TestNewSequential_divisible(t *testing.T) {
	p := NewSequential("a", "b")
	if !p.Divisible() {
		t.Fatalf("expected divisible sequential")
	}
	if p.IsNonDivisibleSequential() {
		t.Fatalf("divisible sequential reported as non-divisible")
	}
}

func TestNewNonDivisibleSequential(t *testing.T) {
	p := NewNonDivisibleSequential("a", "b")
	if p.Divisible() {
		t.Fatalf("expected non-divisible sequential")
	}
	if !p.IsNonDivisibleSequential() {
		t.Fatalf("non-divisible sequential not reported as such")
	}
}

func TestNewMessagePackerPlan(t *testing.T) {
	called := false
	factory := func() Packer {
		called = true
		return NewLinearPacker(1, func(int, int) Instruction { return nil })()
	}
	p := NewMessagePackerPlan(factory)
	if !p.IsMessagePacker() || !p.IsLeaf() {
		t.Fatalf("expected message packer leaf, got %s", p.Kind())
	}
	if p.PackerFactory() == nil {
		t.Fatalf("expected non-nil packer factory")
	}
	p.PackerFactory()()
	if !called {
		t.Fatalf("expected factory to be invoked")
	}
}

func TestBuildChildren_clipsCapacity(t *testing.T) {
	children := buildChildren([]InstructionPlanInput{"a", "b"})
	if cap(children) != len(children) {
		t.Fatalf("expected clipped capacity, got len=%d cap=%d", len(children), cap(children))
	}
}

func TestAssertInstructionPlanKind(t *testing.T) {
	p := NewSingle("a")
	if err := AssertInstructionPlanKind(p, InstructionPlanSingle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := AssertInstructionPlanKind(p, InstructionPlanParallel)
	if err == nil {
		t.Fatalf("expected error")
	}
	unexpected, ok := err.(*UnexpectedInstructionPlanKindError)
	if !ok {
		t.Fatalf("expected *UnexpectedInstructionPlanKindError, got %T", err)
	}
	if unexpected.Expected != InstructionPlanParallel || unexpected.Actual != InstructionPlanSingle {
		t.Errorf("unexpected fields: %+v", unexpected)
	}
}

func TestInstructionPlanKind_String(t *testing.T) {
	cases := map[InstructionPlanKind]string{
		InstructionPlanSingle:        "Single",
		InstructionPlanParallel:      "Parallel",
		InstructionPlanSequential:    "Sequential",
		InstructionPlanMessagePacker: "MessagePacker",
		InstructionPlanKind(99):      "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: expected %q, got %q", kind, want, got)
		}
	}
}

func TestInstructionPlan_IsLeaf(t *testing.T) {
	if !NewSingle("a").IsLeaf() {
		t.Error("Single should be a leaf")
	}
	if !NewMessagePackerPlan(func() Packer { return nil }).IsLeaf() {
		t.Error("MessagePacker should be a leaf")
	}
	if NewParallel("a", "b").IsLeaf() {
		t.Error("Parallel should not be a leaf")
	}
	if NewSequential("a", "b").IsLeaf() {
		t.Error("Sequential should not be a leaf")
	}
}
