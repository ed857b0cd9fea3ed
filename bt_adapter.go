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

import bt "github.com/joeycumines/go-behaviortree"

// BehaviorNode adapts p into a behavior tree node: a Single tick succeeds
// immediately (a planned message carries no outcome of its own), a
// Sequential node ticks its children in order via bt.Sequence, and a
// Parallel node ticks every child via allTick, since bt.Selector's
// first-success semantics don't model Parallel's all-must-run shape.
func (p TransactionPlan) BehaviorNode() bt.Node {
	switch p.Kind() {
	case TransactionPlanSingle:
		return bt.New(func([]bt.Node) (bt.Status, error) { return bt.Success, nil })
	case TransactionPlanSequential:
		children := make([]bt.Node, len(p.Children()))
		for i, c := range p.Children() {
			children[i] = c.BehaviorNode()
		}
		return bt.New(bt.Sequence, children...)
	default:
		children := make([]bt.Node, len(p.Children()))
		for i, c := range p.Children() {
			children[i] = c.BehaviorNode()
		}
		return bt.New(allTick, children...)
	}
}

// BehaviorNode adapts r into a behavior tree node, with a Single leaf's tick
// reflecting its StatusKind: Successful ticks bt.Success, Failed ticks
// bt.Failure, and Canceled — having never run to completion — ticks
// bt.Running.
func (r TransactionPlanResult) BehaviorNode() bt.Node {
	switch r.Kind() {
	case ResultSingle:
		status := bt.Success
		switch r.StatusKind() {
		case StatusFailed:
			status = bt.Failure
		case StatusCanceled:
			status = bt.Running
		}
		return bt.New(func([]bt.Node) (bt.Status, error) { return status, nil })
	case ResultSequential:
		children := make([]bt.Node, len(r.Children()))
		for i, c := range r.Children() {
			children[i] = c.BehaviorNode()
		}
		return bt.New(bt.Sequence, children...)
	default:
		children := make([]bt.Node, len(r.Children()))
		for i, c := range r.Children() {
			children[i] = c.BehaviorNode()
		}
		return bt.New(allTick, children...)
	}
}

// allTick is an AND-semantics tick: every child is ticked, in order, and the
// overall status is Failure if any child failed, else Running if any child
// is still running, else Success. Unlike bt.Sequence it never short-circuits
// on the first non-Success child, matching Parallel's all-siblings-run
// shape.
func allTick(children []bt.Node) (bt.Status, error) {
	sawRunning := false
	sawFailure := false
	for _, child := range children {
		tick, grandchildren := child()
		status, err := tick(grandchildren)
		if err != nil {
			return bt.Failure, err
		}
		switch status {
		case bt.Failure:
			sawFailure = true
		case bt.Running:
			sawRunning = true
		}
	}
	if sawFailure {
		return bt.Failure, nil
	}
	if sawRunning {
		return bt.Running, nil
	}
	return bt.Success, nil
}
