package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "reactive error",
			code:    "E101",
			wantMsg: "Target is not observable",
			wantCat: CategoryReactive,
		},
		{
			name:    "scheduler error",
			code:    "E202",
			wantMsg: "Flush limit exceeded",
			wantCat: CategoryScheduler,
		},
		{
			name:    "render error",
			code:    "E301",
			wantMsg: "Component render failed",
			wantCat: CategoryRender,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "bad flag %q", "--size")
	if err.Message != `bad flag "--size"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestLoopError_Error(t *testing.T) {
	err := New("E202")
	if got, want := err.Error(), "E202: Flush limit exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = New("E203").Wrap(fmt.Errorf("boom"))
	if got, want := err.Error(), "E203: Scheduled job panicked: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoopError_Wrap(t *testing.T) {
	inner := errors.New("inner")
	err := New("E301").Wrap(inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find wrapped error")
	}
	if errors.Unwrap(err) != inner {
		t.Error("Unwrap should return wrapped error")
	}
}

func TestLoopError_Is(t *testing.T) {
	err := fmt.Errorf("flush: %w", New("E202").WithDetail("101 passes"))
	if !errors.Is(err, New("E202")) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, New("E203")) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(err, "E202") {
		t.Error("HasCode(E202) = false, want true")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E301") != nil {
		t.Error("FromError(nil) should return nil")
	}

	le := New("E203")
	if got := FromError(fmt.Errorf("ctx: %w", le), "E301"); got != le {
		t.Error("FromError should return the wrapped LoopError")
	}

	plain := errors.New("plain")
	got := FromError(plain, "E301")
	if got.Code != "E301" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestFromPanic(t *testing.T) {
	err := FromPanic("render exploded", "E301")
	if err.Code != "E301" {
		t.Errorf("Code = %q, want E301", err.Code)
	}
	if err.Wrapped == nil || err.Wrapped.Error() != "render exploded" {
		t.Errorf("Wrapped = %v", err.Wrapped)
	}

	cause := errors.New("typed")
	if FromPanic(cause, "E203").Wrapped != cause {
		t.Error("FromPanic should keep error values")
	}
}

func TestLogAttrs(t *testing.T) {
	attrs := New("E203").WithField("job", "update").LogAttrs()
	joined := fmt.Sprint(attrs...)
	for _, want := range []string{"code", "E203", "category", "scheduler", "job", "update"} {
		if !strings.Contains(joined, want) {
			t.Errorf("LogAttrs() = %v, missing %q", attrs, want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E202").
		WithDetail("101 passes without settling").
		WithField("dropped", 3).
		Wrap(errors.New("cycle"))

	formatted := err.Format()
	for _, want := range []string{
		"ERROR E202: Flush limit exceeded",
		"101 passes without settling",
		"Cause: cycle",
		"dropped: 3",
		"Hint:",
		"Learn more: https://vloop.dev/docs/errors/E202",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E403").WithDetail("node 7")
	want := "E403: Unknown node ID (node 7)"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("E301").WithField("component", "TodoList").FormatJSON()
	for _, want := range []string{
		`"code":"E301"`,
		`"category":"render"`,
		`"message":"Component render failed"`,
		`"component":"TodoList"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() = %s, missing %s", out, want)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.DocURL != "https://vloop.dev/docs/errors/"+code {
			t.Errorf("%s DocURL = %q", code, tmpl.DocURL)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("%s template incomplete: %+v", code, tmpl)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryCLI,
		Message:  "Custom test error",
	})
	defer delete(registry, "E999")

	if err := New("E999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}
	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
