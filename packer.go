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

// ReallocLimit is the maximum chunk size (in bytes) the realloc packer will
// ask its generator for in a single instruction.
const ReallocLimit = 10_240

// Packer is a stateful, single-use producer of instructions sized to fit
// whatever capacity a given message has left. A fresh instance is obtained
// per PackerFactory call; see NewMessagePackerPlan.
type Packer interface {
	// Done reports whether all bytes have been emitted.
	Done() bool
	// PackToCapacity attempts to append one or more instructions into msg,
	// emitting as many bytes as will fit while staying within budget.Limit.
	// It raises MessageCannotAccommodatePlanError when not even one useful
	// byte can be added, and MessagePackerAlreadyCompleteError if Done()
	// was already true.
	PackToCapacity(msg Message, budget Budget) (Message, error)
}

// PackerFactory yields a fresh Packer instance. Traversals such as
// Transform may invoke it more than once, so it must not share state across
// calls.
type PackerFactory func() Packer

// linearPacker is the linear byte-stream packer described in spec.md §4.2.
type linearPacker struct {
	totalLength int
	generator   func(offset, length int) Instruction
	offset      int
}

// NewLinearPacker builds a PackerFactory that emits totalLength bytes' worth
// of instructions via generator(offset, length), splitting across as many
// calls to PackToCapacity as necessary to respect the byte budget.
func NewLinearPacker(totalLength int, generator func(offset, length int) Instruction) PackerFactory {
	return func() Packer {
		return &linearPacker{totalLength: totalLength, generator: generator}
	}
}

func (p *linearPacker) Done() bool { return p.offset >= p.totalLength }

func (p *linearPacker) PackToCapacity(msg Message, b Budget) (Message, error) {
	if p.Done() {
		return msg, &MessagePackerAlreadyCompleteError{}
	}
	probe := p.generator(p.offset, 0)
	probed := b.appendOne(probe, msg)
	free := b.Limit - b.Measure(probed) - 1
	if free <= 0 {
		before := b.Measure(msg)
		return msg, &MessageCannotAccommodatePlanError{
			BytesRequired: b.Measure(probed) - before + 1,
			BytesFree:     b.Limit - before - 1,
		}
	}
	remaining := p.totalLength - p.offset
	n := remaining
	if free < n {
		n = free
	}
	instruction := p.generator(p.offset, n)
	out := b.appendOne(instruction, msg)
	p.offset += n
	return out, nil
}

// OverflowPolicy governs what the instruction-list packer does when an
// instruction's append would overflow the budget mid-call. See spec.md §9's
// Open Question.
type OverflowPolicy int

const (
	// DefaultOverflowPolicy commits up to and including the overflowing
	// instruction, matching the source this spec was distilled from.
	DefaultOverflowPolicy OverflowPolicy = iota
	// StrictOverflowPolicy rejects the overflowing instruction and backs
	// out, leaving it for the next PackToCapacity call.
	StrictOverflowPolicy
)

// InstructionListPackerOption configures NewInstructionListPacker.
type InstructionListPackerOption func(*instructionListPacker)

// WithOverflowPolicy selects the instruction-list packer's overflow
// behavior. Default is DefaultOverflowPolicy.
func WithOverflowPolicy(policy OverflowPolicy) InstructionListPackerOption {
	return func(p *instructionListPacker) { p.policy = policy }
}

type instructionListPacker struct {
	instructions []Instruction
	index        int
	policy       OverflowPolicy
}

// NewInstructionListPacker builds a PackerFactory that emits the given
// instructions in order, packing as many as fit per call to PackToCapacity.
func NewInstructionListPacker(instructions []Instruction, opts ...InstructionListPackerOption) PackerFactory {
	frozen := append([]Instruction(nil), instructions...)
	return func() Packer {
		p := &instructionListPacker{instructions: frozen}
		for _, opt := range opts {
			opt(p)
		}
		return p
	}
}

func (p *instructionListPacker) Done() bool { return p.index >= len(p.instructions) }

func (p *instructionListPacker) PackToCapacity(msg Message, b Budget) (Message, error) {
	if p.Done() {
		return msg, &MessagePackerAlreadyCompleteError{}
	}
	current := msg
	committedAny := false
	for p.index < len(p.instructions) {
		next := p.instructions[p.index]
		before := b.Measure(current)
		candidate := b.appendOne(next, current)
		after := b.Measure(candidate)
		if after > b.Limit {
			if !committedAny {
				return msg, &MessageCannotAccommodatePlanError{
					BytesRequired: after - before + 1,
					BytesFree:     b.Limit - before,
				}
			}
			if p.policy == StrictOverflowPolicy {
				return current, nil
			}
			p.index++
			return candidate, nil
		}
		current = candidate
		p.index++
		committedAny = true
	}
	return current, nil
}

// NewReallocPacker builds a PackerFactory that emits
// ceil(totalSize/ReallocLimit) instructions, each sized ReallocLimit except
// possibly the last, via generator(chunkSize). It delegates packing to an
// instruction-list packer. See spec.md §4.2.
func NewReallocPacker(totalSize int, generator func(chunkSize int) Instruction, opts ...InstructionListPackerOption) PackerFactory {
	instructions := buildReallocInstructions(totalSize, generator)
	return NewInstructionListPacker(instructions, opts...)
}

func buildReallocInstructions(totalSize int, generator func(int) Instruction) []Instruction {
	if totalSize <= 0 {
		return nil
	}
	count := (totalSize + ReallocLimit - 1) / ReallocLimit
	instructions := make([]Instruction, count)
	for i := 0; i < count; i++ {
		chunk := ReallocLimit
		if i == count-1 {
			if last := totalSize % ReallocLimit; last != 0 {
				chunk = last
			}
		}
		instructions[i] = generator(chunk)
	}
	return instructions
}
