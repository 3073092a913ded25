package contextutils

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// CheckCancellationWithLog returns ctx's error once it has ended and logs
// which operation noticed it.
func CheckCancellationWithLog(ctx context.Context, logger zerolog.Logger, operation string) error {
	err := ctx.Err()
	if err != nil {
		logger.Info().Str("operation", operation).Err(err).Msg("Context cancelled")
	}
	return err
}

// IsCancellation reports whether err stems from an ended context
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
