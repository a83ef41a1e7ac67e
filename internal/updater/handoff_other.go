//go:build !unix

package updater

import "errors"

func launchDetached(string) error {
	return errors.New("detached update scripts are only supported on unix")
}
