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

import "errors"

// FindResult returns the first TransactionPlanResult node satisfying
// predicate, in depth-first pre-order.
func FindResult(root TransactionPlanResult, predicate func(TransactionPlanResult) bool) (TransactionPlanResult, bool) {
	return Find(root, predicate)
}

// EveryResult reports whether predicate holds for every node in the tree.
func EveryResult(root TransactionPlanResult, predicate func(TransactionPlanResult) bool) bool {
	return Every(root, predicate)
}

// TransformResult rewrites a result tree bottom-up.
func TransformResult(root TransactionPlanResult, fn func(TransactionPlanResult) TransactionPlanResult) TransactionPlanResult {
	return Transform(root, fn)
}

// FlattenResult returns the ordered list of SingleResult leaves.
func FlattenResult(root TransactionPlanResult) []TransactionPlanResult {
	return Flatten(root)
}

// Summary aggregates a result tree's leaves by status, per spec.md §4.6:
// Successful is true iff there are no failures and no cancellations.
type Summary struct {
	Successful             bool
	SuccessfulTransactions []TransactionPlanResult
	FailedTransactions     []TransactionPlanResult
	CanceledTransactions   []TransactionPlanResult
	// TotalBytes sums Measure(leaf.Message()) across every leaf, regardless
	// of status — useful for reconciling planned vs. executed fee exposure.
	TotalBytes int
}

// Summarize walks root's leaves and buckets them by status.
func Summarize(root TransactionPlanResult, measure Measurer) Summary {
	var s Summary
	for _, leaf := range Flatten(root) {
		switch leaf.StatusKind() {
		case StatusSuccessful:
			s.SuccessfulTransactions = append(s.SuccessfulTransactions, leaf)
		case StatusFailed:
			s.FailedTransactions = append(s.FailedTransactions, leaf)
		case StatusCanceled:
			s.CanceledTransactions = append(s.CanceledTransactions, leaf)
		}
		if measure != nil {
			s.TotalBytes += measure(leaf.Message())
		}
	}
	s.Successful = len(s.FailedTransactions) == 0 && len(s.CanceledTransactions) == 0
	return s
}

// GetFirstFailed returns the first Failed SingleResult in root, in
// depth-first pre-order, or FailedSingleTransactionPlanResultNotFoundError
// if none exists.
func GetFirstFailed(root TransactionPlanResult) (TransactionPlanResult, error) {
	found, ok := Find(root, TransactionPlanResult.IsFailed)
	if !ok {
		return TransactionPlanResult{}, &FailedSingleTransactionPlanResultNotFoundError{result: &root}
	}
	return found, nil
}

// PassthroughFailedExecution extracts the result tree from an error
// returned by Executor.Execute: if err's chain holds a
// FailedToExecuteTransactionPlanError, it returns that error's
// TransactionPlanResult and true; otherwise it returns nil and false, and
// err is left for the caller to handle. Provided so callers don't need to
// reach for errors.As themselves.
func PassthroughFailedExecution(err error) (*TransactionPlanResult, bool) {
	var failed *FailedToExecuteTransactionPlanError
	if !errors.As(err, &failed) {
		return nil, false
	}
	return failed.TransactionPlanResult(), true
}
