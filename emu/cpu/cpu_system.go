/*
   Privilege mode, CSR access, and trap delivery.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

// csrPrivilege returns the minimum privilege mode required to access addr,
// encoded in bits 9:8 of the CSR address.
func csrPrivilege(addr uint16) Mode {
	return Mode((addr >> 8) & 0x3)
}

// csrReadOnly reports whether bits 11:10 of addr mark it read-only; writes
// to a read-only CSR are illegal instructions.
func csrReadOnly(addr uint16) bool {
	return (addr>>10)&0x3 == 0x3
}

// csrWriteMask returns the bits of addr that a CSR write instruction may
// actually modify; writeCSR stores the written value ANDed with this mask,
// so bits outside it read back as zero.
func csrWriteMask(addr uint16) uint64 {
	switch addr {
	case csrMstatus:
		return mstatusWriteMask
	case csrMedeleg:
		return medelegWriteMask
	case csrFcsr:
		return fcsrWriteMask
	case csrFflags:
		return 0x1f
	case csrFrm:
		return 0x7
	case csrMtvec:
		return ^uint64(0)
	case csrMepc:
		return ^uint64(1) // bit 0 is always clear
	case csrMcause:
		return ^uint64(0)
	case csrMhartid:
		return 0
	default:
		return ^uint64(0)
	}
}

// readCSR returns the live value of addr, reconstructing fflags/frm from
// fcsr (and vice versa) so the three aliased views never drift apart.
func readCSR(s *State, addr uint16) uint64 {
	switch addr {
	case csrFflags:
		return s.CSR[csrFcsr] & 0x1f
	case csrFrm:
		return (s.CSR[csrFcsr] >> 5) & 0x7
	default:
		return s.CSR[addr]
	}
}

func writeCSR(s *State, addr uint16, v uint64) {
	masked := v & csrWriteMask(addr)
	switch addr {
	case csrFflags:
		s.CSR[csrFcsr] = (s.CSR[csrFcsr] &^ 0x1f) | masked
		s.CSR[csrFflags] = masked
	case csrFrm:
		s.CSR[csrFcsr] = (s.CSR[csrFcsr] &^ (0x7 << 5)) | (masked << 5)
		s.CSR[csrFrm] = masked
	case csrFcsr:
		s.CSR[csrFcsr] = masked
		s.CSR[csrFflags] = masked & 0x1f
		s.CSR[csrFrm] = (masked >> 5) & 0x7
	case csrMtvec:
		if masked&0x3 > 1 { // reserved mode encoding: reject, leave register unchanged
			return
		}
		s.CSR[addr] = masked
	default:
		s.CSR[addr] = masked
	}
}

// checkCSRAccess validates the privilege and read-only rules for a csrrX
// instruction touching addr.
func checkCSRAccess(s *State, addr uint16, writing bool) bool {
	if s.Mode < csrPrivilege(addr) {
		return false
	}
	if writing && csrReadOnly(addr) {
		return false
	}
	return true
}

func opSystemHandler(s *State, d *decoded) (uint16, bool) {
	switch d.funct3 {
	case 0:
		return systemMisc(s, d)
	case 1: // CSRRW
		return csrOp(s, d, true, func(old, rs1 uint64) uint64 { return rs1 }, s.getX(d.rs1))
	case 2: // CSRRS
		return csrOp(s, d, d.rs1 != 0, func(old, rs1 uint64) uint64 { return old | rs1 }, s.getX(d.rs1))
	case 3: // CSRRC
		return csrOp(s, d, d.rs1 != 0, func(old, rs1 uint64) uint64 { return old &^ rs1 }, s.getX(d.rs1))
	case 5: // CSRRWI
		return csrOp(s, d, true, func(old, rs1 uint64) uint64 { return rs1 }, uint64(d.zimm))
	case 6: // CSRRSI
		return csrOp(s, d, d.zimm != 0, func(old, rs1 uint64) uint64 { return old | rs1 }, uint64(d.zimm))
	case 7: // CSRRCI
		return csrOp(s, d, d.zimm != 0, func(old, rs1 uint64) uint64 { return old &^ rs1 }, uint64(d.zimm))
	default:
		return causeIllegalInstruction, true
	}
}

// csrOp implements the read-modify-write shape shared by all six CSRRx
// instructions. wantsWrite is false for the rs1=x0 / zimm=0 "read-only"
// forms, which must not raise a fault on a read-only CSR.
func csrOp(s *State, d *decoded, wantsWrite bool, combine func(old, rs1 uint64) uint64, rs1 uint64) (uint16, bool) {
	if !checkCSRAccess(s, d.csr, wantsWrite) {
		return causeIllegalInstruction, true
	}
	old := readCSR(s, d.csr)
	if wantsWrite {
		writeCSR(s, d.csr, combine(old, rs1))
	}
	s.setX(d.rd, old)
	s.PC += 4
	return 0, false
}

func systemMisc(s *State, d *decoded) (uint16, bool) {
	switch {
	case d.word == 0x00000073: // ECALL
		switch s.Mode {
		case ModeUser:
			return causeEcallFromU, true
		case ModeSupervisor:
			return causeEcallFromS, true
		default:
			return causeEcallFromM, true
		}
	case d.word == 0x00100073: // EBREAK
		return causeBreakpoint, true
	case d.word == 0x30200073: // MRET
		mret(s)
		return 0, false
	default:
		return causeIllegalInstruction, true
	}
}

// mret restores the pre-trap privilege mode and interrupt-enable state and
// resumes at mepc.
func mret(s *State) {
	status := s.CSR[csrMstatus]
	mpp := Mode((status & mstatusMPPMask) >> mstatusMPPShift)
	mpie := status&mstatusMPIE != 0

	status &^= mstatusMIE
	if mpie {
		status |= mstatusMIE
	}
	status |= mstatusMPIE
	status &^= mstatusMPPMask // MPP resets to U after the trap returns

	s.CSR[csrMstatus] = status
	s.Mode = mpp
	s.PC = s.CSR[csrMepc]
}

// raiseTrap delivers cause: save mode/PC/mstatus, switch to the delegated
// mode, and redirect PC through mtvec. medeleg is a per-cause bitmask, so
// delegation must test bit (1<<cause), never compare medeleg to cause by value.
func raiseTrap(s *State, cause uint16) {
	delegate := s.Mode != ModeMachine && s.CSR[csrMedeleg]&(uint64(1)<<uint(cause)) != 0

	status := s.CSR[csrMstatus]
	mie := status&mstatusMIE != 0
	status &^= mstatusMPIE
	if mie {
		status |= mstatusMPIE
	}
	status &^= mstatusMIE
	status &^= mstatusMPPMask
	status |= uint64(s.Mode) << mstatusMPPShift

	s.CSR[csrMstatus] = status
	s.CSR[csrMepc] = s.PC
	s.CSR[csrMcause] = uint64(cause)

	if delegate {
		s.Mode = ModeSupervisor
	} else {
		s.Mode = ModeMachine
	}

	tvec := s.CSR[csrMtvec]
	base := tvec &^ 0x3
	if tvec&0x3 == 1 && s.CSR[csrMcause]>>63 == 1 { // vectored, interrupt only
		s.PC = base + 4*uint64(cause)
	} else {
		s.PC = base
	}
}
