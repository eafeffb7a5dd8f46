/*
 * rv64sim - Flat byte-addressed memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the engine's flat, byte-addressed physical
// memory: a fixed-size buffer with bounds-checked little-endian loads and
// stores. There is no translation and no alignment requirement; the only
// failure mode is addressing past the end of the buffer.
package memory

// Memory is a zero-based flat byte buffer. An engine owns one *Memory for
// its lifetime so that independent engines (as used by the test suite)
// never alias state.
type Memory struct {
	data []byte
}

// New allocates a zeroed buffer of the given size in bytes.
func New(size uint64) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the buffer length in bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// LoadImage copies image into the start of the buffer, truncating if the
// image is larger than the buffer.
func (m *Memory) LoadImage(image []byte) {
	copy(m.data, image)
}

// inBounds reports whether a width-byte access at addr fits the buffer.
func (m *Memory) inBounds(addr, width uint64) bool {
	if addr > uint64(len(m.data)) {
		return false
	}
	return width <= uint64(len(m.data))-addr
}

// Load8 reads one byte. ok is false on an out-of-bounds address.
func (m *Memory) Load8(addr uint64) (value uint64, ok bool) {
	if !m.inBounds(addr, 1) {
		return 0, false
	}
	return uint64(m.data[addr]), true
}

// Load16 reads two little-endian bytes.
func (m *Memory) Load16(addr uint64) (value uint64, ok bool) {
	if !m.inBounds(addr, 2) {
		return 0, false
	}
	return uint64(m.data[addr]) | uint64(m.data[addr+1])<<8, true
}

// Load32 reads four little-endian bytes.
func (m *Memory) Load32(addr uint64) (value uint64, ok bool) {
	if !m.inBounds(addr, 4) {
		return 0, false
	}
	v := uint64(m.data[addr]) |
		uint64(m.data[addr+1])<<8 |
		uint64(m.data[addr+2])<<16 |
		uint64(m.data[addr+3])<<24
	return v, true
}

// Load64 reads eight little-endian bytes.
func (m *Memory) Load64(addr uint64) (value uint64, ok bool) {
	if !m.inBounds(addr, 8) {
		return 0, false
	}
	lo, _ := m.Load32(addr)
	hi, _ := m.Load32(addr + 4)
	return lo | hi<<32, true
}

// Store8 writes the low byte of value.
func (m *Memory) Store8(addr, value uint64) bool {
	if !m.inBounds(addr, 1) {
		return false
	}
	m.data[addr] = byte(value)
	return true
}

// Store16 writes the low two bytes of value, little-endian.
func (m *Memory) Store16(addr, value uint64) bool {
	if !m.inBounds(addr, 2) {
		return false
	}
	m.data[addr] = byte(value)
	m.data[addr+1] = byte(value >> 8)
	return true
}

// Store32 writes the low four bytes of value, little-endian.
func (m *Memory) Store32(addr, value uint64) bool {
	if !m.inBounds(addr, 4) {
		return false
	}
	m.data[addr] = byte(value)
	m.data[addr+1] = byte(value >> 8)
	m.data[addr+2] = byte(value >> 16)
	m.data[addr+3] = byte(value >> 24)
	return true
}

// Store64 writes all eight bytes of value, little-endian.
func (m *Memory) Store64(addr, value uint64) bool {
	if !m.inBounds(addr, 8) {
		return false
	}
	m.Store32(addr, value&0xffffffff)
	m.Store32(addr+4, value>>32)
	return true
}
