package main

import (
	"fmt"
	"testing"

	"eldercare/internal/errs"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  fmt.Errorf("create: %w", errs.Invalid("full_name", "full_name is required")),
			want: "full_name: full_name is required",
		},
		{
			name: "authentication",
			err:  errs.ErrAuthentication,
			want: "invalid credentials",
		},
		{
			name: "not found",
			err:  fmt.Errorf("elder 9: %w", errs.ErrNotFound),
			want: "not found: elder 9: not found",
		},
		{
			name: "plain",
			err:  fmt.Errorf("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describe(tt.err); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrDash(t *testing.T) {
	age := int64(82)
	notes := "likes tea"
	if got := orDash(&age); got != "82" {
		t.Errorf("orDash(&82) = %q", got)
	}
	if got := orDash(&notes); got != "likes tea" {
		t.Errorf("orDash(&notes) = %q", got)
	}
	if got := orDash[string](nil); got != "-" {
		t.Errorf("orDash(nil) = %q", got)
	}
}

func TestCommandsHaveHelp(t *testing.T) {
	for name, cmd := range commands {
		if cmd.help == "" || cmd.run == nil {
			t.Errorf("command %q is incomplete", name)
		}
	}
}
