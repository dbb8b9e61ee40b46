package oerror

import "fmt"

type TeesimError struct {
	Err string
}

func New(message string, args ...interface{}) *TeesimError {
	return &TeesimError{Err: fmt.Sprintf(message, args...)}
}

func (e *TeesimError) Error() string {
	return e.Err
}
