//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewStatusError(t *testing.T) {
	for _, st := range []Status{StatusOk, StatusOkWarning, StatusOkModeChange, StatusOkRestart, StatusOkWait} {
		if err := NewStatusError(st, "op"); err != nil {
			t.Errorf("NewStatusError(%v) = %v, want nil", st, err)
		}
	}
	err := NewStatusError(StatusErrInvalidParam, "ADL2_Adapter_ID_Get")
	if err == nil {
		t.Fatal("expected error for negative status")
	}
	want := "adlgo: ADL2_Adapter_ID_Get: ADL_ERR_INVALID_PARAM (-3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"driver", &DriverError{Op: "x", Status: StatusErr}, KindDriver},
		{"loader", &LoaderError{Op: "x", Err: ErrDriverUnavailable}, KindLoader},
		{"misuse", misuse("x", ErrContextDestroyed, ""), KindMisuse},
		{"unsupported", &UnsupportedError{Op: "x", Capability: "PMLog"}, KindUnsupported},
		{"wrapped driver", fmt.Errorf("poll: %w", &DriverError{Op: "x", Status: StatusErrNotInit}), KindDriver},
		{"other", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUnsupported(t *testing.T) {
	if !IsUnsupported(&DriverError{Op: "x", Status: StatusErrNotSupported}) {
		t.Error("ADL_ERR_NOT_SUPPORTED should be unsupported")
	}
	if !IsUnsupported(&UnsupportedError{Op: "x", Capability: "y"}) {
		t.Error("UnsupportedError should be unsupported")
	}
	if IsUnsupported(&DriverError{Op: "x", Status: StatusErr}) {
		t.Error("ADL_ERR should not be unsupported")
	}
}

func TestMisuseErrorMatches(t *testing.T) {
	err := misuse("Refresh", ErrContextDestroyed, "")
	if !errors.Is(err, ErrMisuse) || !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("misuse error does not match its sentinels: %v", err)
	}
	if errors.Is(err, ErrNilAllocator) {
		t.Error("misuse error matches an unrelated sentinel")
	}
}

func TestLoaderErrorUnwrap(t *testing.T) {
	cause := errors.New("dlopen failed")
	err := &LoaderError{Op: "Create", Err: ErrDriverUnavailable, Cause: cause}
	if !errors.Is(err, ErrDriverUnavailable) || !errors.Is(err, cause) {
		t.Errorf("loader error does not unwrap: %v", err)
	}
	if StatusOf(err) != StatusOk {
		t.Error("loader error carries no status")
	}
}
