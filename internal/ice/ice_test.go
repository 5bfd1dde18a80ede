package ice

import (
	"strings"
	"testing"
)

func TestAssertfPassesWhenTrue(t *testing.T) {
	if err := Catch(func() { Assertf(true, "unused %d", 1) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssertfPanicsWithMessage(t *testing.T) {
	err := Catch(func() { Assertf(false, "width %d too small", 3) })
	if err == nil {
		t.Fatal("expected internal compiler error")
	}
	if !strings.Contains(err.Error(), "width 3 too small") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCatchRethrowsForeignPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected foreign panic to propagate, got %v", r)
		}
	}()
	_ = Catch(func() { panic("boom") })
	t.Fatal("unreachable")
}
