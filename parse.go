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

import "reflect"

// ParseInstructionPlanInput normalizes a bare instruction, an InstructionPlan,
// or a (possibly mixed) slice of either into a canonical InstructionPlan: an
// empty slice becomes an empty divisible Sequential, a single-element slice
// unwraps to that element, and a mixed slice becomes a divisible Sequential
// of the elements, each bare leaf auto-wrapped as Single. See spec.md §6.
func ParseInstructionPlanInput(input any) InstructionPlan {
	items, isList := asInputSlice(input)
	if !isList {
		return toInstructionPlan(input)
	}
	switch len(items) {
	case 0:
		return NewSequential()
	case 1:
		return toInstructionPlan(items[0])
	default:
		return NewSequential(items...)
	}
}

// ParseTransactionPlanInput is ParseInstructionPlanInput's analogue for the
// executor-facing tree: it accepts a bare message, a TransactionPlan, or a
// slice of either.
func ParseTransactionPlanInput(input any) TransactionPlan {
	items, isList := asInputSlice(input)
	if !isList {
		return toTransactionPlan(input)
	}
	switch len(items) {
	case 0:
		return NewSequentialTransactionPlan(true)
	case 1:
		return toTransactionPlan(items[0])
	default:
		plans := make([]TransactionPlan, len(items))
		for i, it := range items {
			plans[i] = toTransactionPlan(it)
		}
		return NewSequentialTransactionPlan(true, plans...)
	}
}

// asInputSlice reports whether input is a list of items to treat as siblings
// rather than a single bare leaf. InstructionPlanInput is `= any`, a type
// alias, so a plain type assertion against []InstructionPlanInput only ever
// matches the literal []any concrete type — a concretely-typed slice like
// []InstructionPlan or []string fails that assertion and, without this
// fallback, would silently collapse into one opaque Single leaf instead of
// being split into siblings. reflect.Value.Kind() sees through the concrete
// element type, so any slice is recognized here.
//
// []byte is excluded: a caller's bare instruction or message is commonly raw
// bytes, and treating it as a list of per-byte leaves would be wrong.
func asInputSlice(input any) ([]any, bool) {
	if _, ok := input.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(input)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toTransactionPlan(v any) TransactionPlan {
	if p, ok := v.(TransactionPlan); ok {
		return p
	}
	return NewSingleTransactionPlan(v)
}

// ParseInstructionOrTransactionPlanInput accepts either tree at the same
// argument position. Only a TransactionPlan value selects the transaction
// branch (returned as-is, with false); an InstructionPlan is returned as-is
// with true, and any other input, including a slice of TransactionPlans, is
// parsed by ParseInstructionPlanInput.
func ParseInstructionOrTransactionPlanInput(input any) (InstructionPlan, TransactionPlan, bool) {
	switch v := input.(type) {
	case InstructionPlan:
		return v, TransactionPlan{}, true
	case TransactionPlan:
		return InstructionPlan{}, v, false
	default:
		return ParseInstructionPlanInput(input), TransactionPlan{}, true
	}
}
