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

// strMessage is a minimal Message implementation shared by this package's
// tests: instructions are single characters, and the message is their
// concatenation, so byte length is simply len(string).
type strMessage string

func strMeasure(msg Message) int { return len(msg.(strMessage)) }

func strAppend(instructions []Instruction, msg Message) Message {
	out := string(msg.(strMessage))
	for _, ins := range instructions {
		out += ins.(string)
	}
	return strMessage(out)
}

func strBudget(limit int) Budget {
	return Budget{Measure: strMeasure, Append: strAppend, Limit: limit}
}
