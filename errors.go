package main

import "errors"

var (
	ErrNoPath             = errors.New("no output file configured")
	ErrEmptyStore         = errors.New("nothing to save")
	ErrNoListName         = errors.New("observing list has no name")
	ErrNoSelection        = errors.New("no object selected")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrUnknownFormat      = errors.New("unsupported file format")
	ErrListExists         = errors.New("an observing list with this name already exists")
)
