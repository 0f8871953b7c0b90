package compiler

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// FuzzCompile: Compile never panics, and whatever it accepts is valid
// packed text.
// ---------------------------------------------------------------------------

func FuzzCompile(f *testing.F) {
	seeds := []string{
		"",
		"exit",
		"say 4F1A2B03 0",
		"ifPlayerHasCards 1 2 17\n    say 4F1A2B03 0\nendIf",
		"// comment only",
		"exit // trailing",
		"exit//x",
		"foo bar",
		"say",
		"exit 1",
		"\t\t\n\r\n",
		"catchWizform",
		"label 1.2.3",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, source string) {
		out, err := Compile(source)
		if err != nil {
			if out != "" {
				t.Errorf("output %q returned with error %v", out, err)
			}
			if len(Errors(err)) == 0 {
				t.Errorf("error %v carries no line errors", err)
			}
			return
		}
		if !strings.HasSuffix(out, "\n") || (out != "\n" && strings.HasSuffix(out, "\n\n")) {
			t.Errorf("Compile(%q) = %q, want exactly one trailing newline", source, out)
		}
	})
}

// ---------------------------------------------------------------------------
// FuzzDecompile: Decompile never panics and yields one line per input line.
// ---------------------------------------------------------------------------

func FuzzDecompile(f *testing.F) {
	seeds := []string{
		"",
		"%",
		"6.1.2.17\n!.4F1A2B03.0\n7\n",
		"7\n7\n7",
		"8",
		".",
		"...",
		"not packed",
		"\xff.\x00",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, packed string) {
		out := Decompile(context.Background(), packed, nil)
		want := len(strings.Split(packed, "\n"))
		if got := strings.Count(out, "\n"); got != want {
			t.Errorf("Decompile(%q) produced %d lines, want %d", packed, got, want)
		}
	})
}
