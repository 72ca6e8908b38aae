package ast

import "github.com/mewbak/mips-to-c/internal/types"

// The BinaryOpXxx constructors each wrap both operands in the type
// coercion the corresponding MIPS instruction family implies, so callers
// never have to remember e.g. "division operands are signed 32-bit" by
// hand; they just pick the constructor matching the instruction.

func BinaryOpInt(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsIntish(left), Op: op, Right: AsIntish(right), Typ: types.Intish()}
}

func BinaryOpIntptr(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsIntptr(left), Op: op, Right: AsIntptr(right), Typ: types.IntPtr()}
}

func BinaryOpIcmp(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsIntptr(left), Op: op, Right: AsIntptr(right), Typ: types.Bool()}
}

func BinaryOpUcmp(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsU32(left), Op: op, Right: AsU32(right), Typ: types.Bool()}
}

func BinaryOpFcmp(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsF32(left), Op: op, Right: AsF32(right), Typ: types.Bool()}
}

func BinaryOpDcmp(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsF64(left), Op: op, Right: AsF64(right), Typ: types.Bool()}
}

func BinaryOpS32(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsS32(left), Op: op, Right: AsS32(right), Typ: types.S32()}
}

func BinaryOpU32(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsU32(left), Op: op, Right: AsU32(right), Typ: types.U32()}
}

func BinaryOpF32(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsF32(left), Op: op, Right: AsF32(right), Typ: types.F32()}
}

func BinaryOpF64(left Expression, op string, right Expression) *BinaryOp {
	return &BinaryOp{Left: AsF64(left), Op: op, Right: AsF64(right), Typ: types.F64()}
}
