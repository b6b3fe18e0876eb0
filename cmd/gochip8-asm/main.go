// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/disasm"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var debugvar bool
var listvar bool
var verbosevar bool
var outvar string

var logger *log.Logger

const usage = "gochip8-asm [-debug] [-list] [-out outfile] filename"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.c8db'",
	)
	flag.BoolVar(&listvar, "list", false, "Prints a disassembly of the output")
	flag.BoolVar(&verbosevar, "verbose", false, "Enables debug logging")
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
}

func replaceExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

// Prints err with the offending source line underlined when it has a
// position.
func report(w io.Writer, name string, source []byte, err error) {
	var tokenErr assembler.TokenError

	if !errors.As(err, &tokenErr) {
		fmt.Fprintf(w, "\033[1m%s:\033[0m %s\n", name, err)
		return
	}

	cursor := tokenErr.GetPosition()

	start := min(cursor.LineByte, int64(len(source)))
	line := source[start:]
	if end := bytes.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}

	underline := strings.Repeat(" ", int(cursor.Byte-cursor.LineByte)) +
		"^" + strings.Repeat("~", max(int(cursor.Size)-1, 0))

	fmt.Fprintf(
		w, "\033[1m%s:\033[0m %s\n%s\n\033[31m%s\033[0m\n",
		name, err, line, underline,
	)
}

func list(w io.Writer, program []byte, symtable *assembler.SymTable) {
	var memory [machine.MEMORY_SIZE]byte
	copy(memory[machine.MEMSPACE_PROGRAM:], program)

	end := machine.MEMSPACE_PROGRAM + uint16(len(program))

	for _, line := range disasm.Disassemble(memory[:], machine.MEMSPACE_PROGRAM, end) {
		if label, ok := symtable.Labels[line.Addr]; ok {
			fmt.Fprintf(w, "%s:\n", label)
		}

		fmt.Fprintln(w, line)
	}
}

func gochip8_asm() int {
	flag.Parse()

	cfg := log.DefaultConfig()
	if verbosevar {
		cfg.Level = log.DebugLevel
	}
	logger = log.NewWithConfig(cfg)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var name string
	var infile string
	var source []byte
	var err error

	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 && len(args) == 0 {
		name = "<stdin>"

		if source, err = io.ReadAll(os.Stdin); err != nil {
			logger.Error("Unable to read input", log.Err(err))
			return 1
		}

		if outvar == "" {
			outvar = "out.ch8"
		}
	} else {
		if len(args) != 1 {
			logger.Error(usage)
			return 1
		}

		infile = args[0]
		name = filepath.Base(infile)

		if stat, err := os.Stat(infile); err != nil {
			logger.Error("Unable to open input", log.Err(err))
			return 1
		} else if stat.IsDir() {
			logger.Error("Not a valid CHIP-8 assembly file", log.String("file", name))
			return 1
		}

		if source, err = os.ReadFile(infile); err != nil {
			logger.Error("Unable to read input", log.Err(err))
			return 1
		}

		if outvar == "" {
			outvar = replaceExt(name, ".ch8")
		}
	}

	symtable := assembler.NewSymTable("")

	if infile != "" {
		if symtable.Source, err = filepath.Abs(infile); err != nil {
			logger.Warn("Unable to resolve source path", log.Err(err))
			symtable.Source = ""
		}
	}

	result, errs := assembler.Assemble(bytes.NewReader(source), symtable)

	if len(errs) > 0 {
		for _, err := range errs {
			report(os.Stderr, name, source, err)
		}

		return 1
	}

	if err := os.WriteFile(outvar, result, 0666); err != nil {
		logger.Error("Error writing output file", log.String("file", outvar), log.Err(err))
		return 1
	}

	logger.Debug("Program assembled",
		log.String("file", outvar),
		log.Int("size", len(result)),
		log.Int("labels", len(symtable.Labels)))

	if listvar {
		list(os.Stdout, result, symtable)
	}

	if debugvar {
		filename := replaceExt(outvar, ".c8db")

		file, err := os.Create(filename)

		if err != nil {
			logger.Error("Error creating symbol table", log.Err(err))
			return 1
		}

		defer file.Close()

		if err := gob.NewEncoder(file).Encode(symtable); err != nil {
			logger.Error("Error writing symbol table", log.Err(err))
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(gochip8_asm())
}
