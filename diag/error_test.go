package diag

import (
	"bytes"
	"strings"
	"testing"
)

type stopPanic struct{ code int }

func TestFatalReportsKindAndExits(t *testing.T) {
	var buf bytes.Buffer
	restoreOutput := SetOutput(&buf)
	defer restoreOutput()

	restoreExiter := SetExiter(func(code int) { panic(stopPanic{code}) })
	defer restoreExiter()

	var caught stopPanic
	func() {
		defer func() {
			r := recover()
			sp, ok := r.(stopPanic)
			if !ok {
				t.Fatalf("expected Fatal to invoke the overridden exiter, got panic: %v", r)
			}
			caught = sp
		}()
		Fatal(ArityMismatch, "closure expected arity %s, got %s", "two", "one")
	}()

	if caught.code != 1 {
		t.Fatalf("expected exit code 1, got %d", caught.code)
	}
	if !strings.Contains(buf.String(), ArityMismatch.String()) {
		t.Fatalf("expected log output to mention ArityMismatch, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "expected arity two, got one") {
		t.Fatalf("expected log output to include formatted message, got: %s", buf.String())
	}
}

func TestWrapProducesKindTaggedError(t *testing.T) {
	err := Wrap(TypeError, "value of tag %s is not callable", "int")
	if !strings.Contains(err.Error(), TypeError.String()) {
		t.Fatalf("expected wrapped error to mention TypeError, got: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "not callable") {
		t.Fatalf("expected wrapped error to include message, got: %s", err.Error())
	}
}
