package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoData        = errors.New("no usable pairs")
	ErrInvalidPrice  = errors.New("non-positive price")
	ErrUnknownMarket = errors.New("unknown market")
)
