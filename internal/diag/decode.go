// Package diag provides best-effort diagnostics for the panic path
// (spec.md §7): disassembling the faulting instruction's bytes, captured
// from the trap frame, purely for the panic message. This mirrors the
// `tfdump` role in the teacher's main.go, generalized from a register
// dump to a full instruction decode since cheetos has an x86 decoder
// available that biscuit's original panic path did not.
package diag

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// DecodeAt disassembles the first instruction in code (captured starting
// at the faulting rip, pc) for inclusion in a panic message. code must
// contain at least one full instruction's worth of bytes; x86asm.Decode
// handles truncation itself by returning an error.
func DecodeAt(code []byte, pc uint64) string {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return fmt.Sprintf("%#x: <undecodable: %v>", pc, err)
	}
	return fmt.Sprintf("%#x: %s", pc, x86asm.GoSyntax(inst, pc, nil))
}
