package dispatch

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/labelprint/pkg/command/commandtest"
	errs "github.com/matzehuels/labelprint/pkg/errors"
)

func TestList(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{"several", "BrotherQL\nOffice_Laser\n", []string{"BrotherQL", "Office_Laser"}},
		{"blank lines and padding", "\n  Zebra \n\n\tDymo\n", []string{"Zebra", "Dymo"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.New()
			runner.Succeed("lpstat", tt.stdout)
			got, err := NewEnumerator(runner).List(context.Background())
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if got == nil {
				t.Fatal("List() = nil, want non-nil slice")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
			if args := runner.CallsTo("lpstat")[0].Args; !slices.Equal(args, []string{"-e"}) {
				t.Errorf("lpstat args = %v, want [-e]", args)
			}
		})
	}
}

func TestListUnavailable(t *testing.T) {
	if _, err := NewEnumerator(commandtest.New()).List(context.Background()); !errs.Is(err, errs.ErrCodePrintersUnavailable) {
		t.Errorf("List() error code = %q, want %q", errs.GetCode(err), errs.ErrCodePrintersUnavailable)
	}

	runner := commandtest.New()
	runner.Fail("lpstat", 1, "lpstat: No destinations added.")
	if _, err := NewEnumerator(runner).List(context.Background()); !errs.Is(err, errs.ErrCodePrintersUnavailable) {
		t.Errorf("List() error code = %q, want %q", errs.GetCode(err), errs.ErrCodePrintersUnavailable)
	}
}

func TestDefault(t *testing.T) {
	tests := []struct {
		stdout string
		want   string
	}{
		{"system default destination: BrotherQL\n", "BrotherQL"},
		{"no system default destination\n", ""},
	}
	for _, tt := range tests {
		runner := commandtest.New()
		runner.Succeed("lpstat", tt.stdout)
		got, err := NewEnumerator(runner).Default(context.Background())
		if err != nil {
			t.Fatalf("Default() error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Default() with %q = %q, want %q", tt.stdout, got, tt.want)
		}
	}
}
