package middleware

import (
	"conversion-guard/pkg/jwt"
	"conversion-guard/pkg/log"
)

type Middleware struct {
	l         log.Logger
	validator *jwt.Validator
}

func New(l log.Logger, validator *jwt.Validator) Middleware {
	return Middleware{
		l:         l,
		validator: validator,
	}
}
