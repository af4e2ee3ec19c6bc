package handlers

import (
	intconfig "bookingcore/internal/config"
)

var (
	jwtSecret  []byte
	featureSet intconfig.Features
)

// Configure wires the startup environment into the handler package.
// Must be called before mounting routes.
func Configure(env intconfig.Env) {
	jwtSecret = []byte(env.JWTSecret)
	featureSet = env.Features
}
