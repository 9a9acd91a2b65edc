package main

import (
	"context"
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"photo2pdf/compositor"
	"photo2pdf/files_manager"
)

// Exit codes: 0 success, 1 general, 2 usage, 3 I/O, 130 interrupted.
const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitUsage     = 2
	ExitIO        = 3
	ExitCancelled = 130
)

func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, compositor.ErrInvalidOption) ||
		errors.Is(err, files_manager.ErrNoInputs) {
		return ExitUsage
	}
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, files_manager.ErrNoImages) ||
		errors.Is(err, compositor.ErrImageRead) ||
		errors.Is(err, ErrWritePDF) {
		return ExitIO
	}
	return ExitGeneral
}
