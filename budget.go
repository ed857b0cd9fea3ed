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

// Instruction is an opaque unit of work. The planner and executor never
// inspect its contents; only the caller-supplied Measurer and Appender do.
type Instruction = any

// Message is an opaque, caller-defined transaction message. The planner
// treats it as a value threaded through Measurer/Appender calls.
type Message = any

// Measurer returns the serialized byte length of msg.
type Measurer func(msg Message) int

// Appender returns a new message with instructions appended to msg. It must
// be pure: it must not mutate msg.
type Appender func(instructions []Instruction, msg Message) Message

// Budget bundles the external measurement/append collaborators and the
// per-message byte ceiling (TX_SIZE_LIMIT in spec terms) that the packer,
// appender, and planner are all compiled against.
type Budget struct {
	Measure Measurer
	Append  Appender
	Limit   int
}

func (b Budget) appendOne(instruction Instruction, msg Message) Message {
	return b.Append([]Instruction{instruction}, msg)
}
