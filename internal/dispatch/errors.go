package dispatch

import "errors"

var (
	// ErrMissingID is returned when a status check has no job id.
	ErrMissingID = &publicError{msg: "Missing generation ID"}
	// ErrNoFallback is returned when video generation failed and no image
	// generator is configured.
	ErrNoFallback = errors.New("no image generator configured")
)

type publicError struct {
	msg string
}

func (e *publicError) Error() string  { return e.msg }
func (e *publicError) Public() string { return e.msg }
