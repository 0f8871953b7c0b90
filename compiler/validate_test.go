package compiler

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"",
		"%\n",
		"6.1.2.17\n!.4F1A2B03.0\n7\n",
		"  %  \n\n7",
	}
	for _, packed := range valid {
		if err := Validate(packed); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", packed, err)
		}
	}
}

func TestValidateReportsEveryLine(t *testing.T) {
	err := Validate("!.1\nzz.3\n%.3\n%\n.\n..4")
	errs := Errors(err)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), err)
	}

	tests := []struct {
		line int
		kind ErrorKind
		msg  string
	}{
		{1, ArityMismatch, "Line 1: Command say takes exactly 2 arguments: dialogUid, silent"},
		{2, UnknownOpcode, `Line 2: Unknown opcode: "zz"`},
		{3, ArityMismatch, "Line 3: Command takes no arguments: exit"},
		{6, ArityMismatch, "Line 6: Command takes no arguments: catchWizform"},
	}
	for i, tt := range tests {
		if errs[i].Line != tt.line || errs[i].Kind != tt.kind || errs[i].Error() != tt.msg {
			t.Errorf("errs[%d] = %d %v %q, want %d %v %q",
				i, errs[i].Line, errs[i].Kind, errs[i].Error(), tt.line, tt.kind, tt.msg)
		}
	}
}

func TestValidateAcceptsCompileOutput(t *testing.T) {
	packed, err := Compile("wizform 0 25 10\nifIsWizform 25\n    catchWizform\nendIf")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if err := Validate(packed); err != nil {
		t.Errorf("Validate(%q) = %v", packed, err)
	}
}
