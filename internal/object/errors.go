package object

import "fmt"

type ErrorKind string

const (
	NameError  ErrorKind = "NAME_ERROR"
	TypeError  ErrorKind = "TYPE_ERROR"
	FaultError ErrorKind = "FAULT_ERROR"
)

// RuntimeError is a fatal interpreter error. It always ends the run.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Pos     int // source offset, -1 when unknown
}

func (re *RuntimeError) Error() string {
	return string(re.Kind) + ": " + re.Message
}

func NewRuntimeError(kind ErrorKind, pos int, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, a...), Pos: pos}
}

func NewNameError(pos int, format string, a ...interface{}) *RuntimeError {
	return NewRuntimeError(NameError, pos, format, a...)
}

func NewTypeError(pos int, format string, a ...interface{}) *RuntimeError {
	return NewRuntimeError(TypeError, pos, format, a...)
}

func NewFaultError(pos int, format string, a ...interface{}) *RuntimeError {
	return NewRuntimeError(FaultError, pos, format, a...)
}

// Exception is a value raised by a program. It travels through expression
// evaluation as an error and is caught by a matching catch clause.
type Exception struct {
	Value Object
	Pos   int
}

func (e *Exception) Error() string {
	return fmt.Sprintf("exception %q raised", e.Value.Inspect())
}

// Tag is the string a catch clause matches against.
func (e *Exception) Tag() string {
	if s, ok := e.Value.(*String); ok {
		return s.Value
	}
	return e.Value.Inspect()
}
