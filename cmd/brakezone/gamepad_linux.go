package main

import (
	"context"

	"github.com/lixenwraith/brakezone/config"
	"github.com/lixenwraith/brakezone/core"
	"github.com/lixenwraith/brakezone/input"
)

// startGamepad polls the joystick device and routes presses to c
func startGamepad(ctx context.Context, cfg config.GamepadConfig, c input.Controller) (func(), error) {
	js, err := input.OpenJoystick(cfg.Device)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	poller := input.NewGamepadPoller(js, cfg.PollInterval, func(intent input.Intent) {
		input.Apply(c, intent)
	})
	core.Go(func() { poller.Run(ctx) })

	return func() {
		cancel()
		js.Close()
	}, nil
}
