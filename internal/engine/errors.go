package engine

import "errors"

var (
	ErrServiceNotConnected = errors.New("accessibility service not connected")
	ErrTargetNotFound      = errors.New("target window root not found")
	ErrNoScrollableNode    = errors.New("no scrollable node")
	ErrIndexOutOfRange     = errors.New("title index out of range")
	ErrNoTitles            = errors.New("no titles available")
	ErrTitleNotFound       = errors.New("no node with title")
	ErrEmptyBounds         = errors.New("click target has empty bounds")
)
