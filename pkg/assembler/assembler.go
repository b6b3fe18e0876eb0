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

package assembler

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

var mnemonics = map[string]Mnemonic{
	"CLS":  MNEMONIC_CLS,
	"RET":  MNEMONIC_RET,
	"JP":   MNEMONIC_JP,
	"CALL": MNEMONIC_CALL,
	"SE":   MNEMONIC_SE,
	"SNE":  MNEMONIC_SNE,
	"LD":   MNEMONIC_LD,
	"ADD":  MNEMONIC_ADD,
	"OR":   MNEMONIC_OR,
	"AND":  MNEMONIC_AND,
	"XOR":  MNEMONIC_XOR,
	"SUB":  MNEMONIC_SUB,
	"SUBN": MNEMONIC_SUBN,
	"SHR":  MNEMONIC_SHR,
	"SHL":  MNEMONIC_SHL,
	"RND":  MNEMONIC_RND,
	"DRW":  MNEMONIC_DRW,
	"SKP":  MNEMONIC_SKP,
	"SKNP": MNEMONIC_SKNP,
}

var keywords = map[string]OperandType{
	"I":   OPERAND_I,
	"[I]": OPERAND_INDIRECT,
	"DT":  OPERAND_DT,
	"ST":  OPERAND_ST,
	"K":   OPERAND_K,
	"F":   OPERAND_F,
	"B":   OPERAND_B,
}

type form struct {
	Operands []OperandType
	Type     machine.InstructionType
}

var (
	regReg  = []OperandType{OPERAND_REGISTER, OPERAND_REGISTER}
	regByte = []OperandType{OPERAND_REGISTER, OPERAND_BYTE}
)

var forms = map[Mnemonic][]form{
	MNEMONIC_CLS: {{nil, machine.INSTRUCTION_CLS}},
	MNEMONIC_RET: {{nil, machine.INSTRUCTION_RET}},
	MNEMONIC_JP: {
		{[]OperandType{OPERAND_ADDRESS}, machine.INSTRUCTION_JP},
		{[]OperandType{OPERAND_REGISTER, OPERAND_ADDRESS}, machine.INSTRUCTION_JP_V0},
	},
	MNEMONIC_CALL: {{[]OperandType{OPERAND_ADDRESS}, machine.INSTRUCTION_CALL}},
	MNEMONIC_SE: {
		{regByte, machine.INSTRUCTION_SE_BYTE},
		{regReg, machine.INSTRUCTION_SE_REG},
	},
	MNEMONIC_SNE: {
		{regByte, machine.INSTRUCTION_SNE_BYTE},
		{regReg, machine.INSTRUCTION_SNE_REG},
	},
	MNEMONIC_LD: {
		{regByte, machine.INSTRUCTION_LD_BYTE},
		{regReg, machine.INSTRUCTION_LD_REG},
		{[]OperandType{OPERAND_I, OPERAND_ADDRESS}, machine.INSTRUCTION_LD_I},
		{[]OperandType{OPERAND_REGISTER, OPERAND_DT}, machine.INSTRUCTION_LD_VX_DT},
		{[]OperandType{OPERAND_REGISTER, OPERAND_K}, machine.INSTRUCTION_LD_VX_K},
		{[]OperandType{OPERAND_DT, OPERAND_REGISTER}, machine.INSTRUCTION_LD_DT},
		{[]OperandType{OPERAND_ST, OPERAND_REGISTER}, machine.INSTRUCTION_LD_ST},
		{[]OperandType{OPERAND_F, OPERAND_REGISTER}, machine.INSTRUCTION_LD_F},
		{[]OperandType{OPERAND_B, OPERAND_REGISTER}, machine.INSTRUCTION_LD_B},
		{[]OperandType{OPERAND_INDIRECT, OPERAND_REGISTER}, machine.INSTRUCTION_LD_STORE},
		{[]OperandType{OPERAND_REGISTER, OPERAND_INDIRECT}, machine.INSTRUCTION_LD_LOAD},
	},
	MNEMONIC_ADD: {
		{regByte, machine.INSTRUCTION_ADD_BYTE},
		{regReg, machine.INSTRUCTION_ADD_REG},
		{[]OperandType{OPERAND_I, OPERAND_REGISTER}, machine.INSTRUCTION_ADD_I},
	},
	MNEMONIC_OR:   {{regReg, machine.INSTRUCTION_OR}},
	MNEMONIC_AND:  {{regReg, machine.INSTRUCTION_AND}},
	MNEMONIC_XOR:  {{regReg, machine.INSTRUCTION_XOR}},
	MNEMONIC_SUB:  {{regReg, machine.INSTRUCTION_SUB}},
	MNEMONIC_SUBN: {{regReg, machine.INSTRUCTION_SUBN}},
	MNEMONIC_SHR: {
		{regReg, machine.INSTRUCTION_SHR},
		{[]OperandType{OPERAND_REGISTER}, machine.INSTRUCTION_SHR},
	},
	MNEMONIC_SHL: {
		{regReg, machine.INSTRUCTION_SHL},
		{[]OperandType{OPERAND_REGISTER}, machine.INSTRUCTION_SHL},
	},
	MNEMONIC_RND: {{regByte, machine.INSTRUCTION_RND}},
	MNEMONIC_DRW: {
		{[]OperandType{OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_NIBBLE}, machine.INSTRUCTION_DRW},
	},
	MNEMONIC_SKP:  {{[]OperandType{OPERAND_REGISTER}, machine.INSTRUCTION_SKP}},
	MNEMONIC_SKNP: {{[]OperandType{OPERAND_REGISTER}, machine.INSTRUCTION_SKNP}},
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, ".DB") {
		return DIRECTIVE_DB
	} else if strings.EqualFold(ident, ".DW") {
		return DIRECTIVE_DW
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func parseMnemonic(ident string) Mnemonic {
	return mnemonics[strings.ToUpper(ident)]
}

func parseRegister(ident string) (machine.Register, bool) {
	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	value, err := strconv.ParseUint(ident[1:], 16, 4)

	if err != nil {
		return 0, false
	}

	return machine.Register(value), true
}

// Hex literals written as xFF scan as identifiers
func isHexIdent(ident string) bool {
	if len(ident) < 2 || (ident[0] != 'x' && ident[0] != 'X') {
		return false
	}

	for _, char := range ident[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, char) {
			return false
		}
	}

	return true
}

func isReserved(ident string) bool {
	if _, ok := parseRegister(ident); ok {
		return true
	}

	if _, ok := keywords[strings.ToUpper(ident)]; ok {
		return true
	}

	return parseMnemonic(ident) != MNEMONIC_INVALID
}

// Signed decimal literals are accepted for bytes and words and stored in
// two's complement.
func parseLiteral(token *Token, width LiteralType) (uint16, error) {
	value, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	limit := 1 << width
	lower := 0

	if (width == LITERAL_BYTE || width == LITERAL_WORD) &&
		!encoding.IsHex(token.Value) {
		lower = -(limit >> 1)
	}

	if value < lower || value >= limit {
		return 0, &OversizedLiteralError{token.Position, limit - 1, value}
	}

	return uint16(value) & uint16(limit-1), nil
}

func classify(token *Token) OperandType {
	switch token.Type {
	case TOKEN_LITERAL:
		return OPERAND_LITERAL
	case TOKEN_STRING:
		return OPERAND_STRING
	case TOKEN_IDENT:
		if _, ok := parseRegister(token.Value); ok {
			return OPERAND_REGISTER
		}

		if keyword, ok := keywords[strings.ToUpper(token.Value)]; ok {
			return keyword
		}

		return OPERAND_LABEL
	}

	return OPERAND_NONE
}

func accepts(slot, operand OperandType) bool {
	switch slot {
	case OPERAND_NIBBLE, OPERAND_BYTE:
		return operand == OPERAND_LITERAL
	case OPERAND_ADDRESS:
		return operand == OPERAND_LITERAL || operand == OPERAND_LABEL
	}

	return slot == operand
}

func tokenize(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenType TokenType = TOKEN_NONE
	var tokenStart int
	var prev rune
	var comma bool

	flush := func() {
		if builder.Len() > 0 {
			value := builder.String()

			if tokenType == TOKEN_IDENT && isHexIdent(value) {
				tokenType = TOKEN_LITERAL
			}

			tokens = append(tokens, Token{
				Type:  tokenType,
				Value: value,
				Position: Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.Byte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.LineByte,
				},
			})

			builder.Reset()
			comma = false
		}

		tokenType = TOKEN_NONE
	}

scan:
	for column, char := range line {
		cursor.Column = column + 1

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		if char > unicode.MaxASCII {
			errs = append(errs, &OversizedCharacterError{cursor})
		}

		if tokenType == TOKEN_STRING {
			builder.WriteRune(char)

			if char == '"' && prev != '\\' {
				flush()
			}

			prev = char
			continue
		}

		prev = char

		switch {
		// Whitespace
		case unicode.IsSpace(char):
			flush()
			continue

		// Comments
		case char == ';':
			flush()
			break scan

		// Operand Separator
		case char == ',':
			if builder.Len() == 0 && (comma || len(tokens) == 0) {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			flush()
			comma = true
			continue

		// Assembler Directives
		case char == '.':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_DIRECTIVE
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Hex ($2A) or base 10 (#42) Literal
		case char == '$' || char == '#':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Numeric Sign
		case char == '-':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else if tokenType != TOKEN_LITERAL {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// String Literal
		case char == '"':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_STRING
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Numeric Literal
		case unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			}

		// Underscores, [I] and label colons
		case char == '_' || char == '[' || char == ']' || char == ':':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			} else if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Identifier
		case unicode.IsLetter(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		default:
			errs = append(errs, &UnexpectedCharacterError{cursor, char})
		}

		builder.WriteRune(char)
	}

	if tokenType == TOKEN_STRING {
		errs = append(errs, &InvalidStringError{cursor})
	}

	if comma && builder.Len() == 0 {
		errs = append(errs, &UnexpectedCharacterError{cursor, ','})
	}

	flush()

	return tokens, errs
}

type labelRef struct {
	Label    string
	Addr     uint16
	Word     bool
	Position Cursor
}

type assembler struct {
	image   [machine.MEMORY_SIZE]byte
	program uint32
	high    uint32
	emitted int
	full    bool

	labels    map[string]uint16
	labelRefs []labelRef

	symtable *SymTable
	errs     []error
}

func (asm *assembler) emit(values ...byte) bool {
	for _, value := range values {
		if asm.program >= machine.MEMORY_SIZE {
			asm.errs = append(
				asm.errs, &OversizedBinaryError{int(asm.program) + 1},
			)
			asm.full = true
			return false
		}

		asm.image[asm.program] = value
		asm.program++
		asm.emitted++

		asm.high = max(asm.high, asm.program)
	}

	return true
}

// Assemble translates CHIP-8 assembly into a program image to be loaded at
// 0x200. When symtable is non-nil it is filled with source offsets and
// labels. Errors are collected and returned together.
func Assemble(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	asm := assembler{
		program:  uint32(machine.MEMSPACE_PROGRAM),
		high:     uint32(machine.MEMSPACE_PROGRAM),
		labels:   make(map[string]uint16),
		symtable: symtable,
	}

	var scanner = bufio.NewScanner(input)
	var cursor = Cursor{Line: 1}

	for scanner.Scan() {
		line := scanner.Text()
		cursor.Size = int64(len(line))

		tokens, lineErrs := tokenize(line, cursor)

		// Pass any potential assembler errors if we already had parser errors
		if len(lineErrs) > 0 {
			asm.errs = append(asm.errs, lineErrs...)
		} else if len(tokens) > 0 {
			emitted := asm.emitted
			start := asm.program
			done, ok := asm.statement(tokens)

			if asm.symtable != nil && asm.emitted > emitted {
				asm.symtable.Symbols[uint16(start)] = cursor.LineByte
			}

			if done || !ok {
				break
			}
		}

		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		asm.errs = append(asm.errs, err)
	}

	asm.resolve()

	if size := int(asm.high) - int(machine.MEMSPACE_PROGRAM); size > machine.PROGRAM_SIZE && !asm.full {
		asm.errs = append(asm.errs, &OversizedBinaryError{size})
	}

	if len(asm.errs) > 0 {
		return nil, asm.errs
	}

	result = make([]byte, asm.high-uint32(machine.MEMSPACE_PROGRAM))
	copy(result, asm.image[machine.MEMSPACE_PROGRAM:asm.high])

	return result, nil
}

// statement assembles one tokenized line. It reports whether .END was reached
// and whether the image still has room.
func (asm *assembler) statement(tokens []Token) (done bool, ok bool) {
	var keyword *Token
	var operands []Token

	mnemonic := parseMnemonic(tokens[0].Value)
	directive := parseDirective(tokens[0].Value)

	if tokens[0].Type == TOKEN_IDENT && mnemonic != MNEMONIC_INVALID ||
		tokens[0].Type == TOKEN_DIRECTIVE && directive != DIRECTIVE_INVALID {
		keyword = &tokens[0]
		operands = tokens[1:]
	} else {
		label := &tokens[0]

		if label.Type != TOKEN_IDENT {
			asm.errs = append(
				asm.errs, &UnknownIdentifierError{label.Position, label.Value},
			)
			return false, true
		}

		name := strings.TrimSuffix(label.Value, ":")

		if isReserved(name) || name == "" {
			asm.errs = append(
				asm.errs, &ReservedLabelError{label.Position, name},
			)
		} else if _, exists := asm.labels[name]; exists {
			asm.errs = append(
				asm.errs, &RedeclaredLabelError{label.Position, name},
			)
		} else {
			asm.labels[name] = uint16(asm.program)
		}

		// No need to assemble label-only statements
		if len(tokens) == 1 {
			return false, true
		}

		mnemonic = parseMnemonic(tokens[1].Value)
		directive = parseDirective(tokens[1].Value)

		if tokens[1].Type == TOKEN_IDENT && mnemonic != MNEMONIC_INVALID ||
			tokens[1].Type == TOKEN_DIRECTIVE && directive != DIRECTIVE_INVALID {
			keyword = &tokens[1]
			operands = tokens[2:]
		} else {
			asm.errs = append(
				asm.errs,
				&UnknownIdentifierError{tokens[1].Position, tokens[1].Value},
			)
			return false, true
		}
	}

	if keyword.Type == TOKEN_DIRECTIVE {
		return asm.directive(directive, keyword, operands)
	}

	return false, asm.instruction(mnemonic, keyword, operands)
}

func (asm *assembler) directive(
	directive DirectiveType, keyword *Token, operands []Token,
) (done bool, ok bool) {
	switch directive {
	// .END
	case DIRECTIVE_END:
		if count := len(operands); count != 0 {
			asm.errs = append(
				asm.errs, &InvalidNumArgumentsError{keyword.Position, 0, count},
			)
		}

		return true, true

	// .ORG addr
	case DIRECTIVE_ORG:
		if count := len(operands); count != 1 {
			asm.errs = append(
				asm.errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
			)
			break
		}

		if operands[0].Type != TOKEN_LITERAL {
			asm.errs = append(
				asm.errs,
				&InvalidOperandError{
					operands[0].Position,
					[]OperandType{OPERAND_ADDRESS},
					classify(&operands[0]),
				},
			)
			break
		}

		literal, err := parseLiteral(&operands[0], LITERAL_ADDRESS)

		if err != nil {
			asm.errs = append(asm.errs, err)
			break
		}

		if literal < machine.MEMSPACE_PROGRAM {
			asm.errs = append(
				asm.errs, &InvalidOriginError{operands[0].Position, literal},
			)
			break
		}

		asm.program = uint32(literal)

	// .DB byte|"string", ...
	case DIRECTIVE_DB:
		if len(operands) == 0 {
			asm.errs = append(
				asm.errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
			)
			break
		}

		for i := range operands {
			operand := &operands[i]

			switch operand.Type {
			case TOKEN_LITERAL:
				literal, err := parseLiteral(operand, LITERAL_BYTE)

				if err != nil {
					asm.errs = append(asm.errs, err)
				}

				if !asm.emit(byte(literal)) {
					return false, false
				}

			case TOKEN_STRING:
				s, err := strconv.Unquote(operand.Value)

				if err != nil {
					asm.errs = append(asm.errs, &InvalidStringError{operand.Position})
				}

				if !asm.emit([]byte(s)...) {
					return false, false
				}

			default:
				asm.errs = append(
					asm.errs,
					&InvalidOperandError{
						operand.Position,
						[]OperandType{OPERAND_BYTE, OPERAND_STRING},
						classify(operand),
					},
				)
			}
		}

	// .DW word|label, ...
	case DIRECTIVE_DW:
		if len(operands) == 0 {
			asm.errs = append(
				asm.errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
			)
			break
		}

		for i := range operands {
			operand := &operands[i]

			switch classify(operand) {
			case OPERAND_LITERAL:
				literal, err := parseLiteral(operand, LITERAL_WORD)

				if err != nil {
					asm.errs = append(asm.errs, err)
				}

				if !asm.emit(encoding.SplitWord(literal)) {
					return false, false
				}

			case OPERAND_LABEL:
				addr := uint16(asm.program)

				if !asm.emit(0, 0) {
					return false, false
				}

				asm.labelRefs = append(asm.labelRefs, labelRef{
					operand.Value, addr, true, operand.Position,
				})

			default:
				asm.errs = append(
					asm.errs,
					&InvalidOperandError{
						operand.Position,
						[]OperandType{OPERAND_LITERAL, OPERAND_LABEL},
						classify(operand),
					},
				)
			}
		}
	}

	return false, true
}

// match picks the first form of mnemonic whose operand slots accept kinds.
func match(
	mnemonic Mnemonic, keyword *Token, operands []Token, kinds []OperandType,
) (*form, error) {
	candidates := make([]form, 0, len(forms[mnemonic]))

	for _, f := range forms[mnemonic] {
		if len(f.Operands) == len(kinds) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return nil, &InvalidNumArgumentsError{
			keyword.Position, len(forms[mnemonic][0].Operands), len(kinds),
		}
	}

	for i, kind := range kinds {
		var required []OperandType
		var next []form

		for _, f := range candidates {
			if accepts(f.Operands[i], kind) {
				next = append(next, f)
			} else if !slices.Contains(required, f.Operands[i]) {
				required = append(required, f.Operands[i])
			}
		}

		if len(next) == 0 {
			return nil, &InvalidOperandError{operands[i].Position, required, kind}
		}

		candidates = next
	}

	return &candidates[0], nil
}

func (asm *assembler) instruction(
	mnemonic Mnemonic, keyword *Token, operands []Token,
) bool {
	kinds := make([]OperandType, len(operands))

	for i := range operands {
		kinds[i] = classify(&operands[i])
	}

	f, err := match(mnemonic, keyword, operands, kinds)

	if err != nil {
		asm.errs = append(asm.errs, err)

		// Keep addresses of later labels stable
		return asm.emit(0, 0)
	}

	ins := machine.Instruction{Type: f.Type}
	registers := 0

	var ref *labelRef

	for i, slot := range f.Operands {
		operand := &operands[i]

		switch slot {
		case OPERAND_REGISTER:
			reg, _ := parseRegister(operand.Value)

			if registers == 0 {
				ins.X = reg
			} else {
				ins.Y = reg
			}

			registers++

		case OPERAND_NIBBLE:
			literal, err := parseLiteral(operand, LITERAL_NIBBLE)

			if err != nil {
				asm.errs = append(asm.errs, err)
			}

			ins.N = uint8(literal)

		case OPERAND_BYTE:
			literal, err := parseLiteral(operand, LITERAL_BYTE)

			if err != nil {
				asm.errs = append(asm.errs, err)
			}

			ins.NN = uint8(literal)

		case OPERAND_ADDRESS:
			if kinds[i] == OPERAND_LABEL {
				ref = &labelRef{
					operand.Value, uint16(asm.program), false, operand.Position,
				}
				break
			}

			literal, err := parseLiteral(operand, LITERAL_ADDRESS)

			if err != nil {
				asm.errs = append(asm.errs, err)
			}

			ins.NNN = literal
		}
	}

	switch f.Type {
	// JP   |1011|nnn           | Only V0 may be named
	case machine.INSTRUCTION_JP_V0:
		if ins.X != 0 {
			asm.errs = append(asm.errs, &InvalidRegisterError{operands[0].Position})
		}

	// SHR  |1000|x   |y   |0110| Single register form shifts Vx in place
	// SHL  |1000|x   |y   |1110|
	case machine.INSTRUCTION_SHR, machine.INSTRUCTION_SHL:
		if len(f.Operands) == 1 {
			ins.Y = ins.X
		}
	}

	if !asm.emit(ins.Encode()) {
		return false
	}

	if ref != nil {
		asm.labelRefs = append(asm.labelRefs, *ref)
	}

	return true
}

// resolve patches label references and fills the symbol table labels.
func (asm *assembler) resolve() {
	for _, ref := range asm.labelRefs {
		addr, exists := asm.labels[ref.Label]

		if !exists {
			asm.errs = append(
				asm.errs, &UnknownLabelError{ref.Position, ref.Label},
			)
			continue
		}

		if ref.Word {
			asm.image[ref.Addr], asm.image[ref.Addr+1] = encoding.SplitWord(addr)
			continue
		}

		if addr >= machine.MEMORY_SIZE {
			asm.errs = append(
				asm.errs,
				&OversizedLabelError{
					ref.Position, machine.MEMORY_SIZE - 1, int64(addr),
				},
			)
			continue
		}

		high, low := encoding.SplitWord(addr)
		asm.image[ref.Addr] |= high
		asm.image[ref.Addr+1] = low
	}

	if asm.symtable != nil {
		for label, addr := range asm.labels {
			asm.symtable.Labels[addr] = label
		}
	}
}
