package memory

import "testing"

func TestSizeAndImage(t *testing.T) {
	m := New(4096)
	if r := m.Size(); r != 4096 {
		t.Errorf("Size not correct got: %d expected: %d", r, 4096)
	}

	image := []byte{1, 2, 3, 4, 5}
	m.LoadImage(image)
	for i, want := range image {
		got, ok := m.Load8(uint64(i))
		if !ok || got != uint64(want) {
			t.Errorf("Load8(%d) = %d,%v expected: %d,true", i, got, ok, want)
		}
	}
}

func TestLoadImageTruncates(t *testing.T) {
	m := New(4)
	m.LoadImage([]byte{1, 2, 3, 4, 5, 6})
	if r := m.Size(); r != 4 {
		t.Errorf("Size not correct got: %d expected: %d", r, 4)
	}
	if v, ok := m.Load8(3); !ok || v != 4 {
		t.Errorf("Load8(3) = %d,%v expected: 4,true", v, ok)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		store func(m *Memory, addr, v uint64) bool
		load  func(m *Memory, addr uint64) (uint64, bool)
		value uint64
		width uint64
	}{
		{"8", (*Memory).Store8, (*Memory).Load8, 0xab, 1},
		{"16", (*Memory).Store16, (*Memory).Load16, 0xabcd, 2},
		{"32", (*Memory).Store32, (*Memory).Load32, 0xdeadbeef, 4},
		{"64", (*Memory).Store64, (*Memory).Load64, 0x0123456789abcdef, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(64)
			for _, addr := range []uint64{0, 1, 7, 64 - tc.width} {
				if ok := tc.store(m, addr, tc.value); !ok {
					t.Fatalf("store at %d failed", addr)
				}
				got, ok := tc.load(m, addr)
				if !ok {
					t.Fatalf("load at %d failed", addr)
				}
				if got != tc.value {
					t.Errorf("round trip at %d got: %#x expected: %#x", addr, got, tc.value)
				}
			}
		})
	}
}

func TestLittleEndian(t *testing.T) {
	m := New(8)
	m.Store32(0, 0x04030201)
	for i, want := range []byte{1, 2, 3, 4} {
		got, _ := m.Load8(uint64(i))
		if got != uint64(want) {
			t.Errorf("byte %d got: %#x expected: %#x", i, got, want)
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	m := New(4)
	if _, ok := m.Load32(1); ok {
		t.Errorf("Load32(1) on 4-byte memory should fail")
	}
	if _, ok := m.Load64(0); ok {
		t.Errorf("Load64(0) on 4-byte memory should fail")
	}
	if ok := m.Store32(4, 1); ok {
		t.Errorf("Store32(4) on 4-byte memory should fail")
	}
	if _, ok := m.Load8(4); ok {
		t.Errorf("Load8(4) on 4-byte memory should fail")
	}
}
