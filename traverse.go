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

// treeLike is satisfied by InstructionPlan, TransactionPlan, and
// TransactionPlanResult, letting Find/Every/Transform/Flatten be written
// once instead of three times over near-identical recursive sum types.
type treeLike[T any] interface {
	childrenOf() []T
	withChildren([]T) T
	IsLeaf() bool
}

// Find returns the first node, in depth-first pre-order (root tested
// before children, children tested left to right), for which predicate
// returns true.
func Find[T treeLike[T]](root T, predicate func(T) bool) (T, bool) {
	if predicate(root) {
		return root, true
	}
	for _, child := range root.childrenOf() {
		if found, ok := Find(child, predicate); ok {
			return found, true
		}
	}
	var zero T
	return zero, false
}

// Every reports whether predicate holds for every node in the tree. It
// short-circuits depth-first pre-order: once the root or any node fails,
// neither its descendants nor later siblings are evaluated.
func Every[T treeLike[T]](root T, predicate func(T) bool) bool {
	if !predicate(root) {
		return false
	}
	for _, child := range root.childrenOf() {
		if !Every(child, predicate) {
			return false
		}
	}
	return true
}

// Transform rewrites a tree bottom-up: descendants are transformed first,
// the node is reconstructed with the transformed children, and only then is
// fn applied to the reconstructed node.
func Transform[T treeLike[T]](root T, fn func(T) T) T {
	children := root.childrenOf()
	if len(children) > 0 {
		transformed := make([]T, len(children))
		for i, child := range children {
			transformed[i] = Transform(child, fn)
		}
		root = root.withChildren(transformed)
	}
	return fn(root)
}

// Flatten returns the ordered list of leaf nodes, in-order left to right.
func Flatten[T treeLike[T]](root T) []T {
	if root.IsLeaf() {
		return []T{root}
	}
	var out []T
	for _, child := range root.childrenOf() {
		out = append(out, Flatten(child)...)
	}
	return out
}
