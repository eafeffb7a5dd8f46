/*
 * rv64sim - Main process.
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

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/rcornwell/rv64sim/config"
	core "github.com/rcornwell/rv64sim/emu/core"
	loader "github.com/rcornwell/rv64sim/emu/loader"
	logger "github.com/rcornwell/rv64sim/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "config.toml", "Configuration file")
	optImage := getopt.StringLong("image", 'i', "", "Program image to load")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("rv64sim started")

	if *optImage == "" {
		Logger.Error("Please specify a program image with -i/--image")
		os.Exit(1)
	}

	cfg, err := config.LoadFrom(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	if cfg.Trace.Enabled {
		programLevel.Set(slog.LevelDebug)
	}

	entry, err := cfg.EntryAddr()
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	sp, err := cfg.StackPointerAddr()
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	end, err := cfg.TerminationAddr()
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	state, err := loader.LoadFile(*optImage, cfg.Execution.MemorySize, entry, sp)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	engine := core.New(state)
	engine.MaxSteps = cfg.Execution.MaxSteps

	steps := engine.Run(end)
	Logger.Info("execution finished", "steps", steps, "traps", engine.Traps, "pc", state.PC)
}
