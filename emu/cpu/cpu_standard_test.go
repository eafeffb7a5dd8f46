package cpu

import (
	"testing"

	"github.com/rcornwell/rv64sim/emu/memory"
)

func encodeR(opcode uint8, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | uint32(opcode)
}

func encodeI(opcode uint8, rd, funct3, rs1 uint32, imm12 int32) uint32 {
	return (uint32(imm12)&0xfff)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | uint32(opcode)
}

func encodeS(opcode uint8, funct3, rs1, rs2 uint32, imm12 int32) uint32 {
	u := uint32(imm12) & 0xfff
	return (u>>5)<<25 | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (u&0x1f)<<7 | uint32(opcode)
}

func encodeB(funct3, rs1, rs2 uint32, imm13 int32) uint32 {
	u := uint32(imm13)
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3f
	bits4_1 := (u >> 1) & 0xf
	return bit12<<31 | bits10_5<<25 | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | bits4_1<<8 | bit11<<7 | uint32(opBranch)
}

func encodeU(opcode uint8, rd uint32, imm20 uint32) uint32 {
	return (imm20 << 12) | (rd << 7) | uint32(opcode)
}

func encodeJ(rd uint32, imm21 int32) uint32 {
	u := uint32(imm21)
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3ff
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xff
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | (rd << 7) | uint32(opJal)
}

func newTestHart(t *testing.T, memSize uint64) *State {
	t.Helper()
	mem := memory.New(memSize)
	return NewState(mem, 0, 0)
}

func storeWord(t *testing.T, s *State, addr uint64, word uint32) {
	t.Helper()
	if !s.Mem.Store32(addr, uint64(word)) {
		t.Fatalf("failed to store instruction word at %#x", addr)
	}
}

func TestStepAddi(t *testing.T) {
	s := newTestHart(t, 4096)
	storeWord(t, s, 0, encodeI(opOpImm, 1, 0, 0, 5)) // addi x1, x0, 5
	cause, trapped := Step(s)
	if trapped {
		t.Fatalf("unexpected trap, cause %d", cause)
	}
	if s.X[1] != 5 {
		t.Errorf("x1 = %d, want 5", s.X[1])
	}
	if s.PC != 4 {
		t.Errorf("PC = %#x, want 4", s.PC)
	}
}

func TestStepAddAndX0Immutable(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 3
	s.X[2] = 4
	storeWord(t, s, 0, encodeR(opOp, 0, 0, 1, 2, 0)) // add x0, x1, x2 (rd=x0 dropped)
	storeWord(t, s, 4, encodeR(opOp, 3, 0, 1, 2, 0)) // add x3, x1, x2
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[0] != 0 {
		t.Errorf("x0 = %d, want 0", s.X[0])
	}
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[3] != 7 {
		t.Errorf("x3 = %d, want 7", s.X[3])
	}
}

func TestStepStoreLoadRoundTrip(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100 // base address
	s.X[2] = 0xdeadbeef
	storeWord(t, s, 0, encodeS(opStore, 2, 1, 2, 0)) // sw x2, 0(x1)
	storeWord(t, s, 4, encodeI(opLoad, 3, 2, 1, 0))  // lw x3, 0(x1)
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on store")
	}
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on load")
	}
	if s.X[3] != signExtend(0xdeadbeef, 32) {
		t.Errorf("x3 = %#x, want %#x", s.X[3], signExtend(0xdeadbeef, 32))
	}
}

func TestStepBranchTaken(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 5
	s.X[2] = 5
	storeWord(t, s, 0, encodeB(0, 1, 2, 8)) // beq x1, x2, +8
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.PC != 8 {
		t.Errorf("PC = %#x, want 8", s.PC)
	}
}

func TestStepJalLinksAndJumps(t *testing.T) {
	s := newTestHart(t, 4096)
	storeWord(t, s, 0, encodeJ(1, 16)) // jal x1, +16
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[1] != 4 {
		t.Errorf("x1 (link) = %d, want 4", s.X[1])
	}
	if s.PC != 16 {
		t.Errorf("PC = %#x, want 16", s.PC)
	}
}

func TestStepLui(t *testing.T) {
	s := newTestHart(t, 4096)
	storeWord(t, s, 0, encodeU(opLui, 1, 0x12345))
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[1] != 0x12345000 {
		t.Errorf("x1 = %#x, want 0x12345000", s.X[1])
	}
}

func TestStepIllegalOpcodeTraps(t *testing.T) {
	s := newTestHart(t, 4096)
	storeWord(t, s, 0, 0x00000000) // opcode 0 is unassigned
	cause, trapped := Step(s)
	if !trapped || cause != causeIllegalInstruction {
		t.Errorf("cause,trapped = %d,%v want %d,true", cause, trapped, causeIllegalInstruction)
	}
	if s.Mode != ModeMachine {
		t.Errorf("mode after trap = %d, want Machine", s.Mode)
	}
}

func TestStepLoadAccessFault(t *testing.T) {
	s := newTestHart(t, 16)
	storeWord(t, s, 0, encodeI(opLoad, 1, 3, 0, 1000)) // ld x1, 1000(x0) -- out of bounds
	cause, trapped := Step(s)
	if !trapped || cause != causeLoadAccessFault {
		t.Errorf("cause,trapped = %d,%v want %d,true", cause, trapped, causeLoadAccessFault)
	}
}
