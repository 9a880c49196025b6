package uow

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryNotRegistered     = errors.New("[uow] repository not registered")
	ErrRepositoryAlreadyRegistered = errors.New("[uow] repository already registered")
	ErrInvalidRepositoryType       = errors.New("[uow] invalid repository type")
	ErrNilRepositoryFactory        = errors.New("[uow] nil repository factory")
)

func repositoryErr(err error, name RepositoryName) error {
	return fmt.Errorf("%w: %s", err, name)
}
