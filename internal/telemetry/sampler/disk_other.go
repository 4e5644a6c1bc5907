//go:build !linux && !darwin && !freebsd

package sampler

import "errors"

func diskUsagePercent(string) (float64, error) {
	return 0, errors.ErrUnsupported
}

func kernelRelease() string { return "" }
