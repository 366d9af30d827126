package column

import "github.com/pkg/errors"

func errColumnf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}
