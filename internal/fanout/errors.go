package fanout

import "errors"

var (
	ErrDuplicateConnection = errors.New("connection id already registered")
	ErrUnknownConnection   = errors.New("unknown connection id")
	ErrInvalidTopic        = errors.New("invalid topic identifier")
)
