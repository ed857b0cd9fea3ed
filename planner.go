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
	"errors"
	"strconv"
)

// CreateMessageFunc produces a fresh message with fee-payer/version set.
type CreateMessageFunc func(ctx context.Context) (Message, error)

// OnMessageUpdatedFunc is called after the planner appends to a message; it
// returns a possibly-transformed message (e.g. to recompute a compute-budget
// instruction). A nil OnMessageUpdatedFunc behaves as identity.
type OnMessageUpdatedFunc func(ctx context.Context, msg Message) (Message, error)

// PlannerConfig configures a Planner.
type PlannerConfig struct {
	Budget           Budget
	CreateMessage    CreateMessageFunc
	OnMessageUpdated OnMessageUpdatedFunc
}

// Planner compiles an InstructionPlan into a TransactionPlan, maximizing
// instruction packing while respecting Budget.Limit. See spec.md §4.4.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner builds a Planner. cfg.CreateMessage must be non-nil.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// wipKind discriminates the planner's mutable working-tree node kinds.
// Unlike InstructionPlanKind/TransactionPlanKind, there is no MessagePacker
// variant: by the time a node lands in the working tree, any MessagePacker
// leaf has already been drained into one or more wipSingle nodes.
type wipKind int

const (
	wipSingle wipKind = iota
	wipParallel
	wipSequential
)

// wipNode is the planner's mutable intermediate tree (spec.md §9): each
// wipSingle node's message is mutated in place as more instructions pack in;
// Plan's freeze pass rebuilds the immutable TransactionPlan output from it.
type wipNode struct {
	kind      wipKind
	message   Message
	children  []*wipNode
	divisible bool
}

type wrapHint struct {
	kind      wipKind
	divisible bool
}

var rootWrapHint = wrapHint{kind: wipSequential, divisible: true}

// Plan compiles plan into a TransactionPlan. ctx, if nil, defaults to
// context.Background().
func (pl *Planner) Plan(ctx context.Context, plan InstructionPlan) (TransactionPlan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	root, err := pl.planNode(ctx, plan, nil, false, rootWrapHint)
	if err != nil {
		return TransactionPlan{}, err
	}
	if root == nil {
		return TransactionPlan{}, &EmptyInstructionPlanError{}
	}
	frozen := freezeWip(root)
	return assignPaths(frozen, "0"), nil
}

func (pl *Planner) planNode(ctx context.Context, node InstructionPlan, candidates []*wipNode, parentIsParallel bool, wrap wrapHint) (*wipNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch node.Kind() {
	case InstructionPlanSingle:
		return pl.planSingle(ctx, node, candidates)
	case InstructionPlanParallel:
		return pl.planParallelNode(ctx, node, candidates)
	case InstructionPlanSequential:
		return pl.planSequential(ctx, node, candidates, parentIsParallel)
	case InstructionPlanMessagePacker:
		return pl.planPacker(ctx, node, candidates, wrap)
	default:
		return nil, &InvalidInstructionPlanKindError{Kind: node.Kind()}
	}
}

func (pl *Planner) planSingle(ctx context.Context, node InstructionPlan, candidates []*wipNode) (*wipNode, error) {
	instruction := node.Instruction()
	attempt := func(msg Message) (Message, error) {
		return pl.applyWithHook(ctx, msg, func(m Message) (Message, error) {
			return pl.cfg.Budget.appendOne(instruction, m), nil
		})
	}
	placed, err := tryPlace(candidates, attempt, pl.cfg.Budget)
	if err != nil {
		return nil, err
	}
	if placed != nil {
		return nil, nil
	}
	return pl.createAndFill(ctx, attempt)
}

func (pl *Planner) planParallelNode(ctx context.Context, node InstructionPlan, candidates []*wipNode) (*wipNode, error) {
	pool := append([]*wipNode(nil), candidates...)
	var results []*wipNode
	for _, child := range reorderPackersLast(node.Children()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := pl.planNode(ctx, child, pool, true, wrapHint{kind: wipParallel})
		if err != nil {
			return nil, err
		}
		if res != nil {
			results = append(results, res)
			pool = append(pool, collectWipSingles(res)...)
		}
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return &wipNode{kind: wipParallel, children: results}, nil
	}
}

func reorderPackersLast(children []InstructionPlan) []InstructionPlan {
	ordered := make([]InstructionPlan, 0, len(children))
	var packers []InstructionPlan
	for _, c := range children {
		if c.IsMessagePacker() {
			packers = append(packers, c)
		} else {
			ordered = append(ordered, c)
		}
	}
	return append(ordered, packers...)
}

func (pl *Planner) planSequential(ctx context.Context, node InstructionPlan, candidates []*wipNode, parentIsParallel bool) (*wipNode, error) {
	nodeDivisible := node.Divisible()
	mustFitAtomically := parentIsParallel || !nodeDivisible
	if mustFitAtomically {
		placed, err := pl.tryFitAtomic(ctx, node, candidates)
		if err != nil {
			return nil, err
		}
		if placed {
			return nil, nil
		}
		if !nodeDivisible {
			attempt := func(msg Message) (Message, error) {
				return pl.applyWithHook(ctx, msg, func(m Message) (Message, error) {
					return AppendInstructionPlanToMessage(node, m, pl.cfg.Budget)
				})
			}
			return pl.createAndFill(ctx, attempt)
		}
		candidates = nil
	}
	return pl.planSequentialNormal(ctx, node, candidates)
}

func (pl *Planner) tryFitAtomic(ctx context.Context, node InstructionPlan, candidates []*wipNode) (bool, error) {
	for _, c := range candidates {
		trial, err := AppendInstructionPlanToMessage(node, c.message, pl.cfg.Budget)
		if err != nil {
			var overflow *MessageCannotAccommodatePlanError
			if errors.As(err, &overflow) {
				continue
			}
			return false, err
		}
		updated, err := pl.callOnMessageUpdated(ctx, trial)
		if err != nil {
			return false, err
		}
		if pl.cfg.Budget.Measure(updated) > pl.cfg.Budget.Limit {
			continue
		}
		c.message = updated
		return true, nil
	}
	return false, nil
}

func (pl *Planner) planSequentialNormal(ctx context.Context, node InstructionPlan, candidates []*wipNode) (*wipNode, error) {
	divisible := node.Divisible()
	var current []*wipNode
	if divisible && len(candidates) > 0 {
		current = candidates[:1]
	}
	childWrap := wrapHint{kind: wipSequential, divisible: divisible}
	var seq []*wipNode
	for _, child := range node.Children() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := pl.planNode(ctx, child, current, false, childWrap)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}
		if res.kind == wipSequential && res.divisible == divisible {
			seq = append(seq, res.children...)
		} else {
			seq = append(seq, res)
		}
		if last := lastWipSingle(res); last != nil {
			current = []*wipNode{last}
		} else {
			current = nil
		}
	}
	switch len(seq) {
	case 0:
		return nil, nil
	case 1:
		return seq[0], nil
	default:
		return &wipNode{kind: wipSequential, children: seq, divisible: divisible}, nil
	}
}

func (pl *Planner) planPacker(ctx context.Context, node InstructionPlan, candidates []*wipNode, wrap wrapHint) (*wipNode, error) {
	packer := node.PackerFactory()()
	var created []*wipNode
	for !packer.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempt := func(msg Message) (Message, error) {
			return pl.applyWithHook(ctx, msg, func(m Message) (Message, error) {
				return packer.PackToCapacity(m, pl.cfg.Budget)
			})
		}
		placed, err := tryPlace(candidates, attempt, pl.cfg.Budget)
		if err != nil {
			return nil, err
		}
		if placed != nil {
			continue
		}
		fresh, err := pl.createAndFill(ctx, attempt)
		if err != nil {
			return nil, err
		}
		created = append(created, fresh)
		candidates = append(candidates, fresh)
	}
	switch len(created) {
	case 0:
		return nil, nil
	case 1:
		return created[0], nil
	default:
		if wrap.kind == wipParallel {
			return &wipNode{kind: wipParallel, children: created}, nil
		}
		return &wipNode{kind: wipSequential, children: created, divisible: wrap.divisible}, nil
	}
}

// tryPlace evaluates attempt against each candidate in order, committing
// the first whose result stays within budget. A MessageCannotAccommodatePlan
// from attempt advances to the next candidate; any other error propagates.
func tryPlace(candidates []*wipNode, attempt func(Message) (Message, error), b Budget) (*wipNode, error) {
	for _, c := range candidates {
		updated, err := attempt(c.message)
		if err != nil {
			var overflow *MessageCannotAccommodatePlanError
			if errors.As(err, &overflow) {
				continue
			}
			return nil, err
		}
		if b.Measure(updated) > b.Limit {
			continue
		}
		c.message = updated
		return c, nil
	}
	return nil, nil
}

// createAndFill creates a fresh message via CreateMessage, applies attempt,
// and raises MessageCannotAccommodatePlanError if the result still can't fit
// — a fatal condition, since there is no smaller unit left to try.
func (pl *Planner) createAndFill(ctx context.Context, attempt func(Message) (Message, error)) (*wipNode, error) {
	msg, err := pl.createMessage(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := attempt(msg)
	if err != nil {
		return nil, err
	}
	if pl.cfg.Budget.Measure(updated) > pl.cfg.Budget.Limit {
		before := pl.cfg.Budget.Measure(msg)
		return nil, &MessageCannotAccommodatePlanError{
			BytesRequired: pl.cfg.Budget.Measure(updated) - before + 1,
			BytesFree:     pl.cfg.Budget.Limit - before - 1,
		}
	}
	return &wipNode{kind: wipSingle, message: updated}, nil
}

func (pl *Planner) applyWithHook(ctx context.Context, msg Message, predicate func(Message) (Message, error)) (Message, error) {
	if err := ctx.Err(); err != nil {
		return msg, err
	}
	updated, err := predicate(msg)
	if err != nil {
		return msg, err
	}
	return pl.callOnMessageUpdated(ctx, updated)
}

func (pl *Planner) createMessage(ctx context.Context) (Message, error) {
	return raceCancel(ctx, func() (Message, error) { return pl.cfg.CreateMessage(ctx) })
}

func (pl *Planner) callOnMessageUpdated(ctx context.Context, msg Message) (Message, error) {
	if pl.cfg.OnMessageUpdated == nil {
		return msg, nil
	}
	return raceCancel(ctx, func() (Message, error) { return pl.cfg.OnMessageUpdated(ctx, msg) })
}

func collectWipSingles(n *wipNode) []*wipNode {
	if n.kind == wipSingle {
		return []*wipNode{n}
	}
	var out []*wipNode
	for _, c := range n.children {
		out = append(out, collectWipSingles(c)...)
	}
	return out
}

func lastWipSingle(n *wipNode) *wipNode {
	singles := collectWipSingles(n)
	if len(singles) == 0 {
		return nil
	}
	return singles[len(singles)-1]
}

func freezeWip(n *wipNode) TransactionPlan {
	switch n.kind {
	case wipSingle:
		return NewSingleTransactionPlan(n.message)
	case wipParallel:
		children := make([]TransactionPlan, len(n.children))
		for i, c := range n.children {
			children[i] = freezeWip(c)
		}
		return NewParallelTransactionPlan(children...)
	default:
		children := make([]TransactionPlan, len(n.children))
		for i, c := range n.children {
			children[i] = freezeWip(c)
		}
		return NewSequentialTransactionPlan(n.divisible, children...)
	}
}

func assignPaths(p TransactionPlan, path string) TransactionPlan {
	p.path = path
	if len(p.children) > 0 {
		children := make([]TransactionPlan, len(p.children))
		for i, c := range p.children {
			children[i] = assignPaths(c, path+"/"+strconv.Itoa(i))
		}
		p.children = children
	}
	return p
}
