package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeTake    Type = "take"
	TypeMute    Type = "mute"
	TypeShow    Type = "show"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TakeArgs marks a dose taken; Target is a supplement name prefix.
type TakeArgs struct {
	Target string
}

// MuteArgs toggles reminders for a supplement by name prefix.
type MuteArgs struct {
	Target string
}

type ShowArgs struct {
	Subject string
}

type RefreshArgs struct{}

type Command struct {
	Type    Type
	Raw     string
	Take    *TakeArgs
	Mute    *MuteArgs
	Show    *ShowArgs
	Refresh *RefreshArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeTake:
		return parseTarget(TypeTake, input, args)
	case TypeMute:
		return parseTarget(TypeMute, input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeRefresh:
		if len(args) != 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "refresh takes no arguments"}
		}
		return Command{Type: TypeRefresh, Raw: input, Refresh: &RefreshArgs{}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTarget(typ Type, raw string, args []string) (Command, error) {
	target := strings.TrimSpace(strings.Join(args, " "))
	if target == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a supplement name", typ)}
	}
	cmd := Command{Type: typ, Raw: raw}
	switch typ {
	case TypeTake:
		cmd.Take = &TakeArgs{Target: target}
	case TypeMute:
		cmd.Mute = &MuteArgs{Target: target}
	}
	return cmd, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "today", "supplements", "chat":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}
