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

// Package txplan compiles a declarative tree of blockchain instructions into
// a tree of concrete transaction messages bounded by a per-transaction byte
// limit, then executes that tree with well-defined ordering, failure, and
// cancellation semantics.
//
// The three subsystems are:
//
//   - The instruction-plan algebra ([InstructionPlan]) and the
//     [Packer] protocol, for expressing what must happen.
//   - The [Planner], which rewrites an [InstructionPlan] into a
//     [TransactionPlan] while enforcing the byte limit.
//   - The [Executor], which walks a [TransactionPlan] and produces a
//     [TransactionPlanResult].
//
// None of the three knows how a message is serialized, measured, signed, or
// submitted; those are supplied by the caller through [Budget],
// [PlannerConfig], and [ExecutorConfig].
package txplan
