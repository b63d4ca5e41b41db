package errors

import (
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind  *Error
		err   error
		match bool
	}{
		"instance of the same error": {
			kind:  ErrDuplicate,
			err:   ErrDuplicate,
			match: true,
		},
		"wrapped instance of the same error": {
			kind:  ErrDuplicate,
			err:   Wrap(ErrDuplicate, "gotcha"),
			match: true,
		},
		"deeply wrapped instance": {
			kind:  ErrDuplicate,
			err:   Wrap(Wrap(ErrDuplicate, "inner"), "outer"),
			match: true,
		},
		"different error": {
			kind:  ErrDuplicate,
			err:   ErrUnauthorized,
			match: false,
		},
		"stdlib error": {
			kind:  ErrDuplicate,
			err:   fmt.Errorf("stdlib"),
			match: false,
		},
		"nil is not an instance": {
			kind:  ErrDuplicate,
			err:   nil,
			match: false,
		},
		"nil kind matches nil error": {
			kind:  nil,
			err:   nil,
			match: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.match {
				t.Fatalf("want %v, got %v", tc.match, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("want nil, got %+v", err)
	}
}

func TestWrapKeepsMessage(t *testing.T) {
	err := Wrap(ErrExpired, "deadline 42")
	want := "deadline 42: expired"
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestWrapAttachesStackTraceOnce(t *testing.T) {
	inner := Wrap(ErrState, "inner")
	outer := Wrap(inner, "outer")

	if stackTrace(outer) == nil {
		t.Fatal("want a stack trace")
	}
}

func TestRegisterPanicsOnReuse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(2, "also unauthorized")
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("blown fuse")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}
