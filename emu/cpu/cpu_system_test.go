package cpu

import "testing"

func TestCsrrwReadsOldWritesNew(t *testing.T) {
	s := newTestHart(t, 64)
	s.CSR[csrMscratchForTest()] = 5
	s.X[1] = 42
	storeWord(t, s, 0, encodeI(opSystem, 2, 1, 1, int32(csrMscratchForTest()))) // csrrw x2, mscratch, x1
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[2] != 5 {
		t.Errorf("old value in rd = %d, want 5", s.X[2])
	}
	if s.CSR[csrMscratchForTest()] != 42 {
		t.Errorf("CSR after write = %d, want 42", s.CSR[csrMscratchForTest()])
	}
}

// csrMscratchForTest picks a generic, non-aliased, non-read-only M-mode CSR
// address (mscratch, 0x340) to exercise the default read/write path.
func csrMscratchForTest() uint16 { return 0x340 }

func TestCsrrsWithX0SkipsWrite(t *testing.T) {
	s := newTestHart(t, 64)
	addr := csrMscratchForTest()
	s.CSR[addr] = 0x0f
	storeWord(t, s, 0, encodeI(opSystem, 1, 2, 0, int32(addr))) // csrrs x1, mscratch, x0
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[1] != 0x0f {
		t.Errorf("x1 = %#x, want 0x0f", s.X[1])
	}
	if s.CSR[addr] != 0x0f {
		t.Errorf("CSR should be unchanged when rs1=x0, got %#x", s.CSR[addr])
	}
}

func TestCsrReadOnlyWriteTraps(t *testing.T) {
	s := newTestHart(t, 64)
	storeWord(t, s, 0, encodeI(opSystem, 1, 1, 2, int32(csrMhartid))) // csrrw x1, mhartid, x2
	cause, trapped := Step(s)
	if !trapped || cause != causeIllegalInstruction {
		t.Errorf("cause,trapped = %d,%v want %d,true", cause, trapped, causeIllegalInstruction)
	}
}

func TestCsrPrivilegeViolationTraps(t *testing.T) {
	s := newTestHart(t, 64)
	s.Mode = ModeUser
	storeWord(t, s, 0, encodeI(opSystem, 1, 2, 0, int32(csrMstatus))) // csrrs x1, mstatus, x0 -- needs Machine
	cause, trapped := Step(s)
	if !trapped || cause != causeIllegalInstruction {
		t.Errorf("cause,trapped = %d,%v want %d,true", cause, trapped, causeIllegalInstruction)
	}
}

func TestFflagsFcsrAliasing(t *testing.T) {
	s := newTestHart(t, 64)
	writeCSR(s, csrFflags, 0x1f)
	if got := readCSR(s, csrFcsr) & 0x1f; got != 0x1f {
		t.Errorf("fcsr[4:0] = %#x, want 0x1f after writing fflags", got)
	}
	writeCSR(s, csrFrm, 0x5)
	if got := (readCSR(s, csrFcsr) >> 5) & 0x7; got != 0x5 {
		t.Errorf("fcsr[7:5] = %#x, want 0x5 after writing frm", got)
	}
	writeCSR(s, csrFcsr, 0)
	if readCSR(s, csrFflags) != 0 || readCSR(s, csrFrm) != 0 {
		t.Errorf("writing fcsr=0 should clear both fflags and frm views")
	}
}

func TestMepcWriteClearsBitZero(t *testing.T) {
	s := newTestHart(t, 64)
	writeCSR(s, csrMepc, 0x1001)
	if got := readCSR(s, csrMepc); got != 0x1000 {
		t.Errorf("mepc = %#x, want 0x1000 (bit 0 cleared)", got)
	}
}

func TestMtvecRejectsReservedMode(t *testing.T) {
	s := newTestHart(t, 64)
	writeCSR(s, csrMtvec, 0x100) // direct mode, accepted
	writeCSR(s, csrMtvec, 0x200|0x2) // reserved mode encoding, rejected
	if got := readCSR(s, csrMtvec); got != 0x100 {
		t.Errorf("mtvec = %#x, want 0x100 (reserved-mode write rejected)", got)
	}
	writeCSR(s, csrMtvec, 0x300|0x3) // reserved mode encoding, rejected
	if got := readCSR(s, csrMtvec); got != 0x100 {
		t.Errorf("mtvec = %#x, want 0x100 (reserved-mode write rejected)", got)
	}
	writeCSR(s, csrMtvec, 0x400|0x1) // vectored mode, accepted
	if got := readCSR(s, csrMtvec); got != 0x400|0x1 {
		t.Errorf("mtvec = %#x, want 0x401 (vectored mode accepted)", got)
	}
}

func TestEcallCauseByMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		cause uint16
	}{
		{ModeUser, causeEcallFromU},
		{ModeSupervisor, causeEcallFromS},
		{ModeMachine, causeEcallFromM},
	}
	for _, tc := range tests {
		s := newTestHart(t, 64)
		s.Mode = tc.mode
		storeWord(t, s, 0, 0x00000073) // ecall
		cause, trapped := Step(s)
		if !trapped || cause != tc.cause {
			t.Errorf("mode %d: cause,trapped = %d,%v want %d,true", tc.mode, cause, trapped, tc.cause)
		}
	}
}

func TestEbreakTraps(t *testing.T) {
	s := newTestHart(t, 64)
	storeWord(t, s, 0, 0x00100073) // ebreak
	cause, trapped := Step(s)
	if !trapped || cause != causeBreakpoint {
		t.Errorf("cause,trapped = %d,%v want %d,true", cause, trapped, causeBreakpoint)
	}
}

func TestTrapDeliveryAndMret(t *testing.T) {
	s := newTestHart(t, 4096)
	s.CSR[csrMtvec] = 0x40 // direct mode
	storeWord(t, s, 0, 0x00000073)        // ecall
	storeWord(t, s, 0x40, 0x30200073)     // mret, at the trap vector
	cause, trapped := Step(s)
	if !trapped || cause != causeEcallFromM {
		t.Fatalf("cause,trapped = %d,%v want %d,true", cause, trapped, causeEcallFromM)
	}
	if s.PC != 0x40 {
		t.Errorf("PC after trap = %#x, want 0x40 (mtvec)", s.PC)
	}
	if s.CSR[csrMepc] != 0 {
		t.Errorf("mepc = %#x, want 0", s.CSR[csrMepc])
	}
	if s.CSR[csrMcause] != uint64(causeEcallFromM) {
		t.Errorf("mcause = %d, want %d", s.CSR[csrMcause], causeEcallFromM)
	}
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on mret")
	}
	if s.PC != 0 {
		t.Errorf("PC after mret = %#x, want 0 (mepc)", s.PC)
	}
	if s.Mode != ModeMachine {
		t.Errorf("mode after mret = %d, want Machine", s.Mode)
	}
}

// Vectored mode only redirects through the per-cause table for interrupts;
// this core only ever raises synchronous exceptions, so a vectored mtvec
// must still land at the base, exactly like direct mode.
func TestMtvecVectoredRedirectSynchronousUsesBase(t *testing.T) {
	s := newTestHart(t, 64)
	s.CSR[csrMtvec] = 0x80 | 0x1 // vectored mode, base 0x80
	storeWord(t, s, 0, 0x00000073)
	if _, trapped := Step(s); !trapped {
		t.Fatal("expected trap")
	}
	if s.PC != 0x80 {
		t.Errorf("PC after vectored synchronous trap = %#x, want 0x80 (base)", s.PC)
	}
}

func TestMedelegDelegatesToSupervisor(t *testing.T) {
	s := newTestHart(t, 64)
	s.Mode = ModeUser
	s.CSR[csrMedeleg] = uint64(1) << uint(causeBreakpoint)
	s.CSR[csrMtvec] = 0x40
	storeWord(t, s, 0, 0x00100073) // ebreak
	if _, trapped := Step(s); !trapped {
		t.Fatal("expected trap")
	}
	if s.Mode != ModeSupervisor {
		t.Errorf("mode after delegated trap = %d, want Supervisor", s.Mode)
	}
}

func TestMedelegDoesNotDelegateFromMachine(t *testing.T) {
	s := newTestHart(t, 64)
	s.Mode = ModeMachine
	s.CSR[csrMedeleg] = ^uint64(0) // delegate everything
	storeWord(t, s, 0, 0x00100073)
	if _, trapped := Step(s); !trapped {
		t.Fatal("expected trap")
	}
	if s.Mode != ModeMachine {
		t.Errorf("a trap taken from Machine mode must stay in Machine mode regardless of medeleg, got %d", s.Mode)
	}
}
