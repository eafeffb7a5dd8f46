package cpu

import "testing"

func encodeAmo(funct5, rd, rs1, rs2, funct3 uint32) uint32 {
	funct7 := funct5 << 2
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | uint32(opAmo)
}

func TestAmoSwapW(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100
	s.X[2] = 0xaaaa
	if !s.Mem.Store32(0x100, 0x1111) {
		t.Fatal("setup store failed")
	}
	storeWord(t, s, 0, encodeAmo(uint32(amoSwap), 3, 1, 2, 2))
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[3] != 0x1111 {
		t.Errorf("rd (old value) = %#x, want 0x1111", s.X[3])
	}
	v, _ := s.Mem.Load32(0x100)
	if v != 0xaaaa {
		t.Errorf("memory after swap = %#x, want 0xaaaa", v)
	}
}

func TestAmoAddW(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100
	s.X[2] = 5
	s.Mem.Store32(0x100, 10)
	storeWord(t, s, 0, encodeAmo(uint32(amoAdd), 3, 1, 2, 2))
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	v, _ := s.Mem.Load32(0x100)
	if v != 15 {
		t.Errorf("memory after add = %d, want 15", v)
	}
	if s.X[3] != 10 {
		t.Errorf("rd (old value) = %d, want 10", s.X[3])
	}
}

func TestLrScSuccess(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100
	s.X[2] = 99
	s.Mem.Store32(0x100, 42)
	storeWord(t, s, 0, encodeAmo(uint32(amoLR), 3, 1, 0, 2)) // lr.w x3, (x1)
	storeWord(t, s, 4, encodeAmo(uint32(amoSC), 4, 1, 2, 2)) // sc.w x4, x2, (x1)
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on lr")
	}
	if s.X[3] != 42 {
		t.Errorf("lr result = %d, want 42", s.X[3])
	}
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on sc")
	}
	if s.X[4] != 0 {
		t.Errorf("sc result = %d, want 0 (success)", s.X[4])
	}
	v, _ := s.Mem.Load32(0x100)
	if v != 99 {
		t.Errorf("memory after sc = %d, want 99", v)
	}
}

func TestScWithoutReservationFails(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100
	s.X[2] = 99
	s.Mem.Store32(0x100, 42)
	storeWord(t, s, 0, encodeAmo(uint32(amoSC), 4, 1, 2, 2))
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap")
	}
	if s.X[4] != 1 {
		t.Errorf("sc result = %d, want 1 (failure)", s.X[4])
	}
	v, _ := s.Mem.Load32(0x100)
	if v != 42 {
		t.Errorf("memory should be unchanged, got %d", v)
	}
}

func TestScInvalidatedByInterveningStore(t *testing.T) {
	s := newTestHart(t, 4096)
	s.X[1] = 0x100
	s.X[2] = 1
	s.X[3] = 99
	s.Mem.Store32(0x100, 42)
	storeWord(t, s, 0, encodeAmo(uint32(amoLR), 4, 1, 0, 2)) // lr.w x4, (x1)
	storeWord(t, s, 4, encodeS(opStore, 2, 1, 2, 8))          // sw x2, 8(x1) -- unrelated store
	storeWord(t, s, 8, encodeAmo(uint32(amoSC), 5, 1, 3, 2))  // sc.w x5, x3, (x1)
	for i := 0; i < 2; i++ {
		if _, trapped := Step(s); trapped {
			t.Fatalf("unexpected trap at step %d", i)
		}
	}
	if _, trapped := Step(s); trapped {
		t.Fatal("unexpected trap on sc")
	}
	if s.X[5] != 1 {
		t.Errorf("sc result = %d, want 1 (failure, reservation invalidated)", s.X[5])
	}
}
