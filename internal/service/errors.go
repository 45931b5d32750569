package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrTemplateNotFound = errors.New("template not found")
	ErrSessionNotFound  = errors.New("editor session not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrForbidden        = errors.New("template belongs to another host")

	ErrMissingAnswer  = errors.New("required item has no answer")
	ErrInvalidAnswer  = errors.New("answer does not fit the item")
	ErrEmptyPrompt    = errors.New("prompt is empty")
	ErrAIUnavailable  = errors.New("suggestion service unavailable")
	ErrInvalidRequest = errors.New("invalid request")
)
