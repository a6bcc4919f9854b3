// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/sim85/cpu"
	"github.com/ezrec/sim85/emulator"
)

func main() {
	var listing bool
	var steps int
	var trace int
	var verbose bool

	flag.BoolVar(&listing, "l", false, "Print the assembled listing, do not execute")
	flag.IntVar(&steps, "n", 1000000, "Step budget for execution")
	flag.IntVar(&trace, "t", 10, "Trace entries to print after execution")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: Expected one source file argument", os.Args[0])
	}

	source := flag.Arg(0)
	input := os.Stdin
	if source != "-" {
		inf, err := os.Open(source)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		defer inf.Close()
		input = inf
	}

	asm := &cpu.Assembler{Verbose: verbose}
	prog, err := asm.Assemble(input)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	if !prog.Ok() {
		for _, le := range prog.Errors {
			fmt.Fprintf(os.Stderr, "%v: %v\n", source, le)
		}
		os.Exit(1)
	}

	for _, line := range prog.Listing() {
		fmt.Println(line)
	}

	if listing {
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Program = prog
	if err := emu.Reset(); err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	count, halted := emu.Run(steps)

	fmt.Printf("\n%v steps, halted=%v\n", count, halted)
	for _, entry := range emu.Trace(trace) {
		fmt.Println(entry)
	}
	fmt.Print(emu.Cpu)
}
