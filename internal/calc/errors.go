package calc

import (
	"errors"
	"fmt"
)

// Error kinds distinguished by the calculation, matched with errors.Is.
// Configuration and model-data errors abort the whole calculation with no
// partial result; cancellation is surfaced as ErrCanceled and is not
// retryable inside the core.
var (
	ErrConfiguration = errors.New("hazard configuration error")
	ErrModelData     = errors.New("hazard model data error")
	ErrCanceled      = errors.New("hazard calculation canceled")
)

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func modelErr(sourceSet, source, format string, args ...any) error {
	id := sourceSet
	if source != "" {
		id += "/" + source
	}
	return fmt.Errorf("%w: %s: %s", ErrModelData, id, fmt.Sprintf(format, args...))
}
