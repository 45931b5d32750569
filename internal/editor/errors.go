package editor

import "errors"

var (
	ErrUnknownItemType     = errors.New("unknown item type")
	ErrIndexOutOfRange     = errors.New("item index out of range")
	ErrConfigMismatch      = errors.New("configuration does not match item type")
	ErrDuplicateVariableID = errors.New("variableId already used by another item")
	ErrDragInProgress      = errors.New("another drag gesture is in progress")
	ErrInvalidDragSource   = errors.New("invalid drag source")
	ErrInvalidTemplate     = errors.New("invalid template")
)
