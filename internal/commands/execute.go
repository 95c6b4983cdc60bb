package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Take    func(TakeArgs) (Result, error)
	Mute    func(MuteArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Refresh func(RefreshArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeTake:
		if handlers.Take == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "take handler not configured"}
		}
		return handlers.Take(*cmd.Take)
	case TypeMute:
		if handlers.Mute == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "mute handler not configured"}
		}
		return handlers.Mute(*cmd.Mute)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh(*cmd.Refresh)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
