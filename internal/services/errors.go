package services

import (
	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// storeErr translates repository sentinels into application errors.
// notFound is used as the message when the record is missing.
func storeErr(err error, notFound string) error {
	switch err {
	case nil:
		return nil
	case repository.ErrNotFound:
		return errors.NotFound(notFound)
	case repository.ErrLimitReached:
		return errors.LimitExceededf("%s", err.Error())
	case repository.ErrStatusConflict:
		return errors.Wrap(err, errors.ErrInvalidState, "state changed concurrently")
	case repository.ErrEntriesClosed, repository.ErrAlreadyWon:
		return errors.Wrap(err, errors.ErrInvalidState, err.Error())
	}
	return errors.Internal(err)
}
