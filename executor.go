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

	"golang.org/x/sync/errgroup"
)

// ExecutionOutcome is what ExecuteMessageFunc returns for a successfully
// executed message: a signature, and optionally the signed transaction
// object itself, if the caller's signer/sender exposes one. See spec.md
// §4.5 and the Open Question recorded in the grounding ledger.
type ExecutionOutcome struct {
	Signature   any
	Transaction any
}

// ExecuteMessageFunc signs and submits a single message, returning its
// outcome or an error. It is invoked once per Single leaf, concurrently
// across Parallel siblings.
//
// execCtx is a mutable, caller-owned map the callback may populate with
// free-form fields as it runs (spec.md §3.3/§4.5/§6). The executor reads
// execCtx["signature"]/execCtx["transaction"] after the call returns,
// preferring whatever ExecutionOutcome itself carries; everything else in
// execCtx (minus those two keys, on success) survives into the node's
// result as Context().
type ExecuteMessageFunc func(ctx context.Context, msg Message, execCtx map[string]any) (ExecutionOutcome, error)

// DeriveSignatureFunc optionally recovers a signature from a transaction
// object that was written to execCtx["transaction"] before the message
// failed to execute, so a failed leaf's result can still carry a signature
// for later lookup (spec.md §4.5's "if context.transaction was set, derive
// and include its signature").
type DeriveSignatureFunc func(transaction any) any

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	ExecuteMessage  ExecuteMessageFunc
	DeriveSignature DeriveSignatureFunc
}

// Executor runs a TransactionPlan, producing a parallel-shaped
// TransactionPlanResult tree. See spec.md §4.5.
type Executor struct {
	cfg ExecutorConfig
}

// NewExecutor builds an Executor. cfg.ExecuteMessage must be non-nil.
func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{cfg: cfg}
}

// Execute runs plan to completion. It fails fast: on the first Failed leaf
// anywhere in the tree, siblings already in flight are allowed to finish
// (per Parallel semantics, spec.md §4.5) but no new Sequential children are
// started, and the returned error is FailedToExecuteTransactionPlanError
// wrapping that leaf's cause, carrying the full result tree. If ctx is
// canceled so that some leaves never run and none failed, the error is
// FailedToExecuteTransactionPlanError wrapping ctx.Err().
//
// plan must not contain a non-divisible Sequential node; Execute rejects
// those with NonDivisibleTransactionPlansNotSupportedError before running
// anything.
func (ex *Executor) Execute(ctx context.Context, plan TransactionPlan) (TransactionPlanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateDivisible(plan); err != nil {
		return TransactionPlanResult{}, err
	}
	result := ex.execNode(ctx, plan)
	if first, ok := Find(result, TransactionPlanResult.IsFailed); ok {
		return result, &FailedToExecuteTransactionPlanError{cause: first.Err(), result: &result}
	}
	if _, ok := Find(result, TransactionPlanResult.IsCanceled); ok {
		return result, &FailedToExecuteTransactionPlanError{cause: ctx.Err(), result: &result}
	}
	return result, nil
}

func validateDivisible(plan TransactionPlan) error {
	ok := Every(plan, func(p TransactionPlan) bool {
		return !p.IsSequential() || p.Divisible()
	})
	if !ok {
		return &NonDivisibleTransactionPlansNotSupportedError{}
	}
	return nil
}

func (ex *Executor) execNode(ctx context.Context, plan TransactionPlan) TransactionPlanResult {
	switch plan.Kind() {
	case TransactionPlanSingle:
		return ex.execSingle(ctx, plan)
	case TransactionPlanSequential:
		return ex.execSequential(ctx, plan)
	case TransactionPlanParallel:
		return ex.execParallel(ctx, plan)
	default:
		return newFailedResult(plan, &InvalidTransactionPlanKindError{Kind: plan.Kind()}, nil)
	}
}

func (ex *Executor) execSingle(ctx context.Context, plan TransactionPlan) TransactionPlanResult {
	if err := ctx.Err(); err != nil {
		return newCanceledResult(plan)
	}
	execCtx := map[string]any{}
	outcome, err := raceCancel(ctx, func() (ExecutionOutcome, error) {
		return ex.cfg.ExecuteMessage(ctx, plan.Message(), execCtx)
	})
	if err != nil {
		if tx, ok := execCtx["transaction"]; ok && ex.cfg.DeriveSignature != nil {
			if sig := ex.cfg.DeriveSignature(tx); sig != nil {
				execCtx["signature"] = sig
			}
		}
		return newFailedResult(plan, err, execCtx)
	}
	signature := outcome.Signature
	if signature == nil {
		signature = execCtx["signature"]
	}
	transaction := outcome.Transaction
	if transaction == nil {
		transaction = execCtx["transaction"]
	}
	return newSuccessfulResult(plan, signature, transaction, contextWithout(execCtx, "signature", "transaction"))
}

// contextWithout returns a copy of m with keys removed, or nil if the
// result would be empty — so a callback that wrote nothing beyond
// signature/transaction yields a nil Context() rather than an empty map.
func contextWithout(m map[string]any, keys ...string) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// execSequential runs children strictly in order, stopping — and marking
// the remainder Canceled — as soon as one fails.
func (ex *Executor) execSequential(ctx context.Context, plan TransactionPlan) TransactionPlanResult {
	children := plan.Children()
	results := make([]TransactionPlanResult, len(children))
	failed := false
	for i, child := range children {
		if failed || ctx.Err() != nil {
			results[i] = cancelSubtree(child)
			continue
		}
		results[i] = ex.execNode(ctx, child)
		if hasFailed(results[i]) {
			failed = true
		}
	}
	return TransactionPlanResult{kind: ResultSequential, divisible: plan.Divisible(), children: results, path: plan.Path()}
}

// execParallel dispatches every child concurrently via a plain errgroup.
// Deliberately not errgroup.WithContext: a sibling's failure must never
// cancel another sibling already in flight (spec.md §4.5).
func (ex *Executor) execParallel(ctx context.Context, plan TransactionPlan) TransactionPlanResult {
	children := plan.Children()
	results := make([]TransactionPlanResult, len(children))
	var g errgroup.Group
	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			results[i] = ex.execNode(ctx, child)
			return nil
		})
	}
	_ = g.Wait()
	return TransactionPlanResult{kind: ResultParallel, children: results, path: plan.Path()}
}

func hasFailed(r TransactionPlanResult) bool {
	_, ok := Find(r, TransactionPlanResult.IsFailed)
	return ok
}

// cancelSubtree produces a Canceled result tree matching plan's shape,
// without executing anything.
func cancelSubtree(plan TransactionPlan) TransactionPlanResult {
	switch plan.Kind() {
	case TransactionPlanSingle:
		return newCanceledResult(plan)
	case TransactionPlanSequential:
		children := make([]TransactionPlanResult, len(plan.Children()))
		for i, c := range plan.Children() {
			children[i] = cancelSubtree(c)
		}
		return TransactionPlanResult{kind: ResultSequential, divisible: plan.Divisible(), children: children, path: plan.Path()}
	default:
		children := make([]TransactionPlanResult, len(plan.Children()))
		for i, c := range plan.Children() {
			children[i] = cancelSubtree(c)
		}
		return TransactionPlanResult{kind: ResultParallel, children: children, path: plan.Path()}
	}
}
