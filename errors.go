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

import "fmt"

// EmptyInstructionPlanError is raised by the planner when recursion over an
// InstructionPlan produced no transaction plan nodes at all.
type EmptyInstructionPlanError struct{}

func (e *EmptyInstructionPlanError) Error() string {
	return "txplan: instruction plan produced no transaction plan"
}

// MessageCannotAccommodatePlanError is raised by a MessagePacker, or by the
// planner's create-and-fill subroutine, when not even one useful byte could
// be added to a message.
type MessageCannotAccommodatePlanError struct {
	BytesRequired int
	BytesFree     int
}

func (e *MessageCannotAccommodatePlanError) Error() string {
	return fmt.Sprintf("txplan: message cannot accommodate plan: requires %d more byte(s), %d free", e.BytesRequired, e.BytesFree)
}

// MessagePackerAlreadyCompleteError is raised when PackToCapacity is called
// on a packer whose Done method already returns true.
type MessagePackerAlreadyCompleteError struct{}

func (e *MessagePackerAlreadyCompleteError) Error() string {
	return "txplan: message packer already complete"
}

// NonDivisibleTransactionPlansNotSupportedError is raised by the executor's
// validation pass when a TransactionPlan contains a non-divisible Sequential
// node; this executor does not bundle transactions.
type NonDivisibleTransactionPlansNotSupportedError struct{}

func (e *NonDivisibleTransactionPlansNotSupportedError) Error() string {
	return "txplan: non-divisible transaction plans are not supported by this executor"
}

// FailedToExecuteTransactionPlanError is raised by Executor.Execute when any
// node in the plan fails or is canceled.
//
// TransactionPlanResult is deliberately an accessor method rather than an
// exported field: the result tree must be reachable by a caller that knows
// to ask for it, but it must not show up in Error(), in a %+v of the error,
// or in an encoding/json marshaling of it — the non-enumerable contract
// spec.md §7/§9 describes.
type FailedToExecuteTransactionPlanError struct {
	cause  error
	result *TransactionPlanResult
}

func (e *FailedToExecuteTransactionPlanError) Error() string {
	return fmt.Sprintf("txplan: failed to execute transaction plan: %v", e.cause)
}

func (e *FailedToExecuteTransactionPlanError) Unwrap() error { return e.cause }

// TransactionPlanResult returns the full result tree produced by the failed
// execution. See the type's doc comment for why this isn't a field.
func (e *FailedToExecuteTransactionPlanError) TransactionPlanResult() *TransactionPlanResult {
	return e.result
}

// FailedSingleTransactionPlanResultNotFoundError is raised by GetFirstFailed
// when no Failed SingleResult exists in the searched tree.
type FailedSingleTransactionPlanResultNotFoundError struct {
	result *TransactionPlanResult
}

func (e *FailedSingleTransactionPlanResultNotFoundError) Error() string {
	return "txplan: no failed transaction plan result was found"
}

// TransactionPlanResult returns the tree that was searched. Kept as a method
// for the same non-enumerable reasons as FailedToExecuteTransactionPlanError.
func (e *FailedSingleTransactionPlanResultNotFoundError) TransactionPlanResult() *TransactionPlanResult {
	return e.result
}

// UnexpectedInstructionPlanKindError is raised by AssertInstructionPlanKind.
type UnexpectedInstructionPlanKindError struct {
	Expected InstructionPlanKind
	Actual   InstructionPlanKind
	Node     InstructionPlan
}

func (e *UnexpectedInstructionPlanKindError) Error() string {
	return fmt.Sprintf("txplan: expected instruction plan kind %s, got %s", e.Expected, e.Actual)
}

// UnexpectedTransactionPlanResultKindError is raised by
// AssertTransactionPlanResultKind.
type UnexpectedTransactionPlanResultKindError struct {
	Expected ResultKind
	Actual   ResultKind
	Node     TransactionPlanResult
}

func (e *UnexpectedTransactionPlanResultKindError) Error() string {
	return fmt.Sprintf("txplan: expected transaction plan result kind %s, got %s", e.Expected, e.Actual)
}

// InvalidInstructionPlanKindError is raised defensively whenever code
// switches exhaustively over InstructionPlanKind and hits an unknown value.
type InvalidInstructionPlanKindError struct {
	Kind InstructionPlanKind
}

func (e *InvalidInstructionPlanKindError) Error() string {
	return fmt.Sprintf("txplan: invalid instruction plan kind %s", e.Kind)
}

// InvalidTransactionPlanKindError is raised defensively whenever code
// switches exhaustively over TransactionPlanKind and hits an unknown value.
type InvalidTransactionPlanKindError struct {
	Kind TransactionPlanKind
}

func (e *InvalidTransactionPlanKindError) Error() string {
	return fmt.Sprintf("txplan: invalid transaction plan kind %s", e.Kind)
}
