package cpu

import "testing"

func TestSignExtend(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		bits uint
		want uint64
	}{
		{"12-bit positive", 0x7ff, 12, 0x7ff},
		{"12-bit negative", 0xfff, 12, 0xffffffffffffffff},
		{"32-bit negative", 0x80000000, 32, 0xffffffff80000000},
		{"32-bit positive", 0x7fffffff, 32, 0x7fffffff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := signExtend(tc.v, tc.bits); got != tc.want {
				t.Errorf("signExtend(%#x,%d) = %#x, want %#x", tc.v, tc.bits, got, tc.want)
			}
		})
	}
}

func TestDecodeIType(t *testing.T) {
	// addi x1, x2, -1   -> imm=0xfff rs1=x2 funct3=0 rd=x1 opcode=0x13
	word := uint32(0xfff10093)
	d := decode(word)
	if d.opcode != opOpImm {
		t.Errorf("opcode = %#x, want %#x", d.opcode, opOpImm)
	}
	if d.rd != 1 {
		t.Errorf("rd = %d, want 1", d.rd)
	}
	if d.rs1 != 2 {
		t.Errorf("rs1 = %d, want 2", d.rs1)
	}
	if d.immI != 0xffffffffffffffff {
		t.Errorf("immI = %#x, want all-ones", d.immI)
	}
}

func TestDecodeUType(t *testing.T) {
	// lui x1, 0x12345 -> opcode 0x37
	word := uint32(0x123450b7)
	d := decode(word)
	if d.opcode != opLui {
		t.Errorf("opcode = %#x, want %#x", d.opcode, opLui)
	}
	if d.immU != 0x12345000 {
		t.Errorf("immU = %#x, want 0x12345000", d.immU)
	}
}

func TestDecodeBType(t *testing.T) {
	// beq x1, x2, -4   word: imm[12|10:5]=1111111 rs2=2 rs1=1 funct3=0 imm[4:1|11]=11101 opcode=0x63
	word := uint32(0xfe208ee3)
	d := decode(word)
	if d.opcode != opBranch {
		t.Errorf("opcode = %#x, want %#x", d.opcode, opBranch)
	}
	if int64(d.immB) != -4 {
		t.Errorf("immB = %d, want -4", int64(d.immB))
	}
}

func TestEffRound(t *testing.T) {
	s := NewState(nil, 0, 0)
	s.CSR[csrFrm] = 3
	if r := effRound(s, 7); r != 3 {
		t.Errorf("effRound dynamic = %d, want 3 (from frm)", r)
	}
	if r := effRound(s, 2); r != 2 {
		t.Errorf("effRound static = %d, want 2", r)
	}
}
