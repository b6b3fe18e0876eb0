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

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_DIRECTIVE
	TOKEN_STRING
	TOKEN_LITERAL
)

const (
	LITERAL_NIBBLE  LiteralType = 4
	LITERAL_BYTE                = 8
	LITERAL_ADDRESS             = 12
	LITERAL_WORD                = 16
)

const (
	OPERAND_NONE OperandType = iota

	// Operand slots of an instruction form
	OPERAND_REGISTER
	OPERAND_NIBBLE
	OPERAND_BYTE
	OPERAND_ADDRESS

	// Fixed operand keywords
	OPERAND_I
	OPERAND_INDIRECT
	OPERAND_DT
	OPERAND_ST
	OPERAND_K
	OPERAND_F
	OPERAND_B

	// Operands as they appear in source before they are matched to a slot
	OPERAND_LITERAL
	OPERAND_LABEL
	OPERAND_STRING
)

const (
	MNEMONIC_INVALID Mnemonic = iota
	MNEMONIC_CLS
	MNEMONIC_RET
	MNEMONIC_JP
	MNEMONIC_CALL
	MNEMONIC_SE
	MNEMONIC_SNE
	MNEMONIC_LD
	MNEMONIC_ADD
	MNEMONIC_OR
	MNEMONIC_AND
	MNEMONIC_XOR
	MNEMONIC_SUB
	MNEMONIC_SUBN
	MNEMONIC_SHR
	MNEMONIC_SHL
	MNEMONIC_RND
	MNEMONIC_DRW
	MNEMONIC_SKP
	MNEMONIC_SKNP
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_DB
	DIRECTIVE_DW
	DIRECTIVE_END
)
