package compiler

import (
	"context"
	"strings"

	"github.com/chazu/zzed/opcode"
)

// indentUnit is one block level of decompiled output.
const indentUnit = "    "

// Annotator produces the trailing comment of a decompiled command line.
// Implementations must not fail: anything they cannot resolve is rendered
// as a placeholder instead.
type Annotator interface {
	Annotate(ctx context.Context, cmd opcode.Command, args []string) string
}

// AnnotatorFunc adapts a function to the Annotator interface.
type AnnotatorFunc func(ctx context.Context, cmd opcode.Command, args []string) string

// Annotate calls f.
func (f AnnotatorFunc) Annotate(ctx context.Context, cmd opcode.Command, args []string) string {
	return f(ctx, cmd, args)
}

// Decompile expands packed script text into its mnemonic form.
//
// Lines that do not start with a known opcode are copied unchanged. Every
// output line, including the last, ends with a newline. Lines inside a
// condition block are indented one level per open condition; else is
// printed flush with its condition. With a nil annotator no comments are
// added.
func Decompile(ctx context.Context, packed string, a Annotator) string {
	var out strings.Builder
	depth := 0

	for _, line := range strings.Split(packed, "\n") {
		tokens := strings.Split(strings.TrimSpace(line), ".")

		cmd, ok := opcode.DecodeToken(tokens[0])
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		if cmd.ClosesBlock() && depth > 0 {
			depth--
		}
		if cmd != opcode.Else {
			out.WriteString(strings.Repeat(indentUnit, depth))
		}
		out.WriteString(cmd.Mnemonic())

		args := tokens[1:]
		if len(args) > 0 {
			out.WriteByte(' ')
			out.WriteString(strings.Join(args, " "))
		}
		if cmd.OpensBlock() {
			depth++
		}

		if a != nil {
			out.WriteString(a.Annotate(ctx, cmd, args))
		}
		out.WriteByte('\n')
	}

	return out.String()
}
