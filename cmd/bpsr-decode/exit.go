package main

import (
	"errors"
	"os"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
)

// exitWithError prints err to stderr and terminates the process. An error
// wrapping apperr.ErrInputNotFound exits 2; every other error exits 1,
// including usage errors such as a wrong argument count or an unrecognized
// --decoder value, which carry no sentinel of their own.
func exitWithError(err error) {
	log.Error(err)
	switch {
	case errors.Is(err, apperr.ErrInputNotFound):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}
