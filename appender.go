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

// AppendInstructionPlanToMessage walks plan's leaves in flatten order and
// appends each directly to msg: Single leaves contribute their instruction,
// MessagePacker leaves are driven to completion. It assumes the caller
// knows everything fits; no budget-limit check is performed beyond what the
// packers themselves enforce.
func AppendInstructionPlanToMessage(plan InstructionPlan, msg Message, b Budget) (Message, error) {
	current := msg
	for _, leaf := range Flatten(plan) {
		switch leaf.Kind() {
		case InstructionPlanSingle:
			current = b.appendOne(leaf.Instruction(), current)
		case InstructionPlanMessagePacker:
			packer := leaf.PackerFactory()()
			for !packer.Done() {
				var err error
				current, err = packer.PackToCapacity(current, b)
				if err != nil {
					return current, err
				}
			}
		default:
			return current, &InvalidInstructionPlanKindError{Kind: leaf.Kind()}
		}
	}
	return current, nil
}
