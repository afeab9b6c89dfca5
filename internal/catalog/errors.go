package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// invalidRepositoryError is returned for repository ids outside the allow-list.
type invalidRepositoryError struct{ repo string }

func (e invalidRepositoryError) Error() string {
	return fmt.Sprintf("Repository '%s' is not in the list of downloadable models. Allowed models: %s",
		e.repo, strings.Join(allowedRepositories(), ", "))
}

// IsInvalidRepository reports whether err was produced by ValidateRepository.
func IsInvalidRepository(err error) bool {
	var e invalidRepositoryError
	return errors.As(err, &e)
}
