package compiler

import (
	"fmt"
	"strings"

	"github.com/chazu/zzed/opcode"
)

// Validate checks packed script text before it is written to a database
// from somewhere other than Compile, e.g. an imported bundle. Every
// non-blank line must start with a known opcode followed by exactly the
// command's number of arguments. All failing lines are reported as an
// ErrorList.
func Validate(packed string) error {
	var errs ErrorList

	for i, line := range strings.Split(packed, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		cmd, args, ok := splitPacked(trimmed)
		if !ok {
			token, _, _ := strings.Cut(trimmed, ".")
			errs = append(errs, &Error{
				Line:    i + 1,
				Kind:    UnknownOpcode,
				Token:   token,
				Message: fmt.Sprintf("Unknown opcode: %q", token),
			})
			continue
		}
		if err := checkArity(i+1, cmd, args); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// splitPacked reads the opcode from the first byte rather than from the
// text before the first '.', so catchWizform, whose opcode is '.' itself,
// is recognised.
func splitPacked(line string) (opcode.Command, []string, bool) {
	cmd, ok := opcode.Decode(line[0])
	if !ok {
		return 0, nil, false
	}
	rest := line[1:]
	switch {
	case rest == "":
		return cmd, nil, true
	case rest[0] == '.':
		return cmd, strings.Split(rest[1:], "."), true
	default:
		return 0, nil, false
	}
}
