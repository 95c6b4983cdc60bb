package commands

import (
	"errors"
	"testing"
)

func TestParseValidCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, cmd Command)
	}{
		{
			name:  "take with multi word target",
			input: "take vitamin d3",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeTake {
					t.Fatalf("type = %s, want take", cmd.Type)
				}
				if cmd.Take == nil || cmd.Take.Target != "vitamin d3" {
					t.Fatalf("take args = %+v", cmd.Take)
				}
			},
		},
		{
			name:  "take with slash prefix",
			input: "/take magnesium",
			check: func(t *testing.T, cmd Command) {
				if cmd.Take == nil || cmd.Take.Target != "magnesium" {
					t.Fatalf("take args = %+v", cmd.Take)
				}
			},
		},
		{
			name:  "mute",
			input: "mute omega 3",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeMute {
					t.Fatalf("type = %s, want mute", cmd.Type)
				}
				if cmd.Mute == nil || cmd.Mute.Target != "omega 3" {
					t.Fatalf("mute args = %+v", cmd.Mute)
				}
			},
		},
		{
			name:  "show normalizes case",
			input: "show Today",
			check: func(t *testing.T, cmd Command) {
				if cmd.Show == nil || cmd.Show.Subject != "today" {
					t.Fatalf("show args = %+v", cmd.Show)
				}
			},
		},
		{
			name:  "refresh",
			input: "  refresh  ",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeRefresh || cmd.Refresh == nil {
					t.Fatalf("cmd = %+v", cmd)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			tt.check(t, cmd)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode ErrorCode
	}{
		{name: "empty", input: "   ", wantCode: ErrCodeEmptyInput},
		{name: "bare slash", input: "/", wantCode: ErrCodeEmptyInput},
		{name: "unknown verb", input: "snooze d3", wantCode: ErrCodeUnknownCommand},
		{name: "take without target", input: "take", wantCode: ErrCodeInvalidArgument},
		{name: "mute without target", input: "mute   ", wantCode: ErrCodeInvalidArgument},
		{name: "show without subject", input: "show", wantCode: ErrCodeInvalidArgument},
		{name: "show bad subject", input: "show calendar", wantCode: ErrCodeInvalidArgument},
		{name: "refresh with args", input: "refresh now", wantCode: ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) {
				t.Fatalf("error type = %T, want *CommandError", err)
			}
			if cmdErr.Code != tt.wantCode {
				t.Fatalf("code = %s, want %s", cmdErr.Code, tt.wantCode)
			}
		})
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("take d3")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var got string
	handlers := Handlers{
		Take: func(args TakeArgs) (Result, error) {
			got = args.Target
			return Result{Message: "taken"}, nil
		},
	}
	res, err := Execute(cmd, handlers)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got != "d3" {
		t.Fatalf("handler target = %q, want d3", got)
	}
	if res.Message != "taken" {
		t.Fatalf("result message = %q", res.Message)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("refresh")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if cmdErr.Code != ErrCodeHandlerMissing {
		t.Fatalf("code = %s, want %s", cmdErr.Code, ErrCodeHandlerMissing)
	}
}
