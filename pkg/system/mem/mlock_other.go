//go:build !linux

package mem

import "errors"

func lock(b []byte) error   { return errors.ErrUnsupported }
func unlock(b []byte) error { return nil }
