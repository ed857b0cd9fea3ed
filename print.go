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
	"fmt"

	"github.com/xlab/treeprint"
)

// String renders p as an ASCII tree, leaves labeled with their instruction via
// fmt's %v (callers with a richer message type typically implement
// fmt.Stringer on it for a more useful rendering).
func (p InstructionPlan) String() string {
	root := treeprint.New()
	printInstructionPlan(root, p)
	return root.String()
}

func printInstructionPlan(t treeprint.Tree, p InstructionPlan) {
	switch p.Kind() {
	case InstructionPlanSingle:
		t.AddNode(fmt.Sprintf("Single(%v)", p.Instruction()))
	case InstructionPlanMessagePacker:
		t.AddNode("MessagePacker")
	case InstructionPlanParallel:
		branch := t.AddBranch("Parallel")
		for _, c := range p.Children() {
			printInstructionPlan(branch, c)
		}
	case InstructionPlanSequential:
		label := "Sequential"
		if !p.Divisible() {
			label = "Sequential(non-divisible)"
		}
		branch := t.AddBranch(label)
		for _, c := range p.Children() {
			printInstructionPlan(branch, c)
		}
	}
}

// String renders p as an ASCII tree, one leaf per planned transaction
// message, annotated with its stable Path.
func (p TransactionPlan) String() string {
	root := treeprint.New()
	printTransactionPlan(root, p)
	return root.String()
}

func printTransactionPlan(t treeprint.Tree, p TransactionPlan) {
	switch p.Kind() {
	case TransactionPlanSingle:
		t.AddNode(fmt.Sprintf("Single[%s](%v)", p.Path(), p.Message()))
	case TransactionPlanParallel:
		branch := t.AddBranch(fmt.Sprintf("Parallel[%s]", p.Path()))
		for _, c := range p.Children() {
			printTransactionPlan(branch, c)
		}
	case TransactionPlanSequential:
		branch := t.AddBranch(fmt.Sprintf("Sequential[%s]", p.Path()))
		for _, c := range p.Children() {
			printTransactionPlan(branch, c)
		}
	}
}

// String renders r as an ASCII tree, each leaf annotated with its status
// and, when Failed, its cause.
func (r TransactionPlanResult) String() string {
	root := treeprint.New()
	printTransactionPlanResult(root, r)
	return root.String()
}

func printTransactionPlanResult(t treeprint.Tree, r TransactionPlanResult) {
	switch r.Kind() {
	case ResultSingle:
		switch r.StatusKind() {
		case StatusSuccessful:
			t.AddNode(fmt.Sprintf("Single[%s] successful signature=%v", r.Path(), r.Signature()))
		case StatusFailed:
			t.AddNode(fmt.Sprintf("Single[%s] failed: %v", r.Path(), r.Err()))
		default:
			t.AddNode(fmt.Sprintf("Single[%s] canceled", r.Path()))
		}
	case ResultParallel:
		branch := t.AddBranch(fmt.Sprintf("Parallel[%s]", r.Path()))
		for _, c := range r.Children() {
			printTransactionPlanResult(branch, c)
		}
	case ResultSequential:
		branch := t.AddBranch(fmt.Sprintf("Sequential[%s]", r.Path()))
		for _, c := range r.Children() {
			printTransactionPlanResult(branch, c)
		}
	}
}
