package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrCatalogUnavailable, ExitSystem),
			wantTarget: ErrCatalogUnavailable,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewUserError(Wrap(ErrUnsupportedPlatform, "detecting host"), "use WSL"),
			wantTarget: ErrUnsupportedPlatform,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrPathConflict,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestInstallStepError(t *testing.T) {
	err := NewInstallStepError(100, "sudo", "apt-get", "install", "-y", "git")

	want := `command "sudo apt-get install -y git" exited with code 100`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Wrap(err, "installing build dependencies")
	if !Is(wrapped, ErrInstallStep) {
		t.Error("wrapped InstallStepError should match ErrInstallStep")
	}

	var stepErr *InstallStepError
	if !As(wrapped, &stepErr) {
		t.Fatal("As() should find InstallStepError through wrapping")
	}
	if stepErr.ExitCode != 100 {
		t.Errorf("ExitCode = %d, want 100", stepErr.ExitCode)
	}
	if len(stepErr.Command) != 5 || stepErr.Command[0] != "sudo" {
		t.Errorf("Command = %v, want argv starting with sudo", stepErr.Command)
	}
}

func TestExitError_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantAs   bool
	}{
		{
			name:     "direct ExitError",
			err:      NewExitError(ErrNotFound, ExitUser),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "wrapped ExitError",
			err:      fmt.Errorf("command failed: %w", NewSystemError(ErrProfileWrite, "")),
			wantCode: ExitSystem,
			wantAs:   true,
		},
		{
			name:   "non-ExitError",
			err:    ErrNotFound,
			wantAs: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *ExitError
			gotAs := errors.As(tt.err, &exitErr)
			if gotAs != tt.wantAs {
				t.Errorf("errors.As() = %v, want %v", gotAs, tt.wantAs)
			}
			if gotAs && exitErr.Code != tt.wantCode {
				t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrCatalogUnavailable, "type a version such as 3.12.4")
	if !Is(err, ErrCatalogUnavailable) {
		t.Error("hinted error should still match its sentinel")
	}
	if got := FlattenHints(err); got != "type a version such as 3.12.4" {
		t.Errorf("FlattenHints() = %q", got)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError(ErrInvalidConfig)
	if err.Code != ExitUser {
		t.Errorf("Code = %d, want %d", err.Code, ExitUser)
	}
	if err.Suggestion != "Run: pyup doctor" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}
