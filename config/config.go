/*
   TOML-backed execution configuration.

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

// Package config holds rv64sim's execution configuration: where a program
// image loads, where the stack starts, how much memory the hart gets, and
// where it should stop. It is patterned directly on
// lookbusy1344-arm_emulator's config.Config: a grouped struct, a
// DefaultConfig, and a LoadFrom that is tolerant of a missing file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is rv64sim's execution configuration.
type Config struct {
	Execution struct {
		Entry              string `toml:"entry"`
		StackPointer       string `toml:"stack_pointer"`
		MemorySize         uint64 `toml:"memory_size"`
		TerminationAddress string `toml:"termination_address"`
		MaxSteps           uint64 `toml:"max_steps"`
	} `toml:"execution"`

	Trace struct {
		Enabled  bool   `toml:"enabled"`
		LogLevel string `toml:"log_level"`
	} `toml:"trace"`
}

// DefaultConfig returns reasonable defaults for a freestanding test image:
// entry 0, sp 4096, 4 MiB of memory, termination address 0x4c.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.Entry = "0x0"
	cfg.Execution.StackPointer = "0x1000"
	cfg.Execution.MemorySize = 4 * 1024 * 1024
	cfg.Execution.TerminationAddress = "0x4c"
	cfg.Execution.MaxSteps = 0
	cfg.Trace.Enabled = false
	cfg.Trace.LogLevel = "info"
	return cfg
}

// Load reads config.toml from the current directory.
func Load() (*Config, error) {
	return LoadFrom("config.toml")
}

// LoadFrom reads path, falling back to DefaultConfig if it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// EntryAddr parses Execution.Entry, accepting decimal or 0x-prefixed hex.
func (c *Config) EntryAddr() (uint64, error) { return parseAddr(c.Execution.Entry) }

// StackPointerAddr parses Execution.StackPointer.
func (c *Config) StackPointerAddr() (uint64, error) { return parseAddr(c.Execution.StackPointer) }

// TerminationAddr parses Execution.TerminationAddress.
func (c *Config) TerminationAddr() (uint64, error) { return parseAddr(c.Execution.TerminationAddress) }

func parseAddr(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid address %q: %w", s, err)
	}
	return v, nil
}
