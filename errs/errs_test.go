package errs_test

import (
	"errors"
	"testing"

	"github.com/pokgame/engine/errs"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := errs.Wrap(errs.KindMap, "op", nil); err != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := errs.ErrBadFormat
	err := errs.Wrap(errs.KindMap, "provider.load", cause)

	if !errors.Is(err, errs.ErrBadFormat) {
		t.Fatal("expected errors.Is to find the wrapped sentinel")
	}
	if errors.Unwrap(err) != cause {
		t.Fatalf("Unwrap = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestNewHasNoWrappedCause(t *testing.T) {
	err := errs.New(errs.KindTileCatalog, "catalog.NewTileCatalog")
	if errors.Unwrap(err) != nil {
		t.Fatalf("Unwrap = %v, want nil", errors.Unwrap(err))
	}
}

func TestKindStringNamesEachKind(t *testing.T) {
	cases := map[errs.Kind]string{
		errs.KindNet:           "net",
		errs.KindTileCatalog:   "tile-catalog",
		errs.KindSpriteCatalog: "sprite-catalog",
		errs.KindMap:           "map",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := errs.Wrap(errs.KindNet, "netio.Channel.fill", errs.ErrEndOfComms)
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty error message")
	}
}
