//go:build !linux

package main

import (
	"context"
	"errors"

	"github.com/lixenwraith/brakezone/config"
	"github.com/lixenwraith/brakezone/input"
)

func startGamepad(context.Context, config.GamepadConfig, input.Controller) (func(), error) {
	return nil, errors.New("joystick devices are only supported on linux")
}
