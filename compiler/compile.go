// Package compiler translates ZanZarah scripts between their editable
// mnemonic form and the packed opcode form stored in the game database.
//
// Source scripts carry one command per line:
//
//	ifPlayerHasCards 1 2 17   // amount, cardType, id
//	    say 4F1A2B03 0
//	endIf
//
// Compile packs every line into its opcode character followed by the
// '.'-joined arguments ("6.1.2.17"). Decompile reverses this, re-indenting
// condition blocks and appending an explanatory comment per command.
package compiler

import (
	"fmt"
	"strings"

	"github.com/chazu/zzed/opcode"
)

const commentMarker = "//"

// Compile packs a mnemonic script.
//
// Every line is checked; when any line fails the returned error is an
// ErrorList holding all of them and no packed text is produced. Blank and
// comment-only lines contribute nothing to the output. The packed text
// always ends with a single newline.
func Compile(source string) (string, error) {
	var out strings.Builder
	var errs ErrorList
	emitted := false

	for i, line := range strings.Split(source, "\n") {
		lineNo := i + 1

		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		cmd, ok := opcode.Lookup(tokens[0])
		if !ok {
			errs = append(errs, &Error{
				Line:    lineNo,
				Kind:    UnknownCommand,
				Token:   tokens[0],
				Message: "Unknown command: " + tokens[0],
			})
			continue
		}

		args := tokens[1:]
		if err := checkArity(lineNo, cmd, args); err != nil {
			errs = append(errs, err)
			continue
		}

		if emitted {
			out.WriteByte('\n')
		}
		emitted = true

		out.WriteByte(cmd.Opcode())
		if len(args) > 0 {
			out.WriteByte('.')
			out.WriteString(strings.Join(args, "."))
		}
	}

	if len(errs) > 0 {
		return "", errs
	}
	out.WriteByte('\n')
	return out.String(), nil
}

// tokenize drops the end-of-line comment and splits the rest on whitespace.
func tokenize(line string) []string {
	if idx := strings.Index(line, commentMarker); idx >= 0 {
		line = line[:idx]
	}
	return strings.Fields(line)
}

func checkArity(lineNo int, cmd opcode.Command, args []string) *Error {
	if cmd.HasParams() {
		params := cmd.Params()
		if len(args) == len(params) {
			return nil
		}
		return &Error{
			Line:  lineNo,
			Kind:  ArityMismatch,
			Token: cmd.Mnemonic(),
			Message: fmt.Sprintf("Command %s takes exactly %d arguments: %s",
				cmd.Mnemonic(), len(params), strings.Join(params, ", ")),
		}
	}

	if len(args) == 0 {
		return nil
	}
	return &Error{
		Line:    lineNo,
		Kind:    ArityMismatch,
		Token:   cmd.Mnemonic(),
		Message: "Command takes no arguments: " + cmd.Mnemonic(),
	}
}
