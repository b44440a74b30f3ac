//go:build linux

package input

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// Linux joystick API event, see linux/joystick.h
const (
	jsEventSize   = 8
	jsEventButton = 0x01
	jsEventInit   = 0x80
	maxJSButtons  = 32
)

// JoystickSource reads button state from a /dev/input/js* device
type JoystickSource struct {
	mu        sync.Mutex
	buttons   []bool
	connected bool
	file      *os.File
}

// OpenJoystick opens device and starts reading events in the background
func OpenJoystick(device string) (*JoystickSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open joystick %s: %w", device, err)
	}
	js := &JoystickSource{
		buttons:   make([]bool, maxJSButtons),
		connected: true,
		file:      f,
	}
	go js.read()
	return js, nil
}

func (js *JoystickSource) read() {
	var buf [jsEventSize]byte
	for {
		if _, err := io.ReadFull(js.file, buf[:]); err != nil {
			js.mu.Lock()
			js.connected = false
			js.mu.Unlock()
			return
		}
		// time u32 | value s16 | type u8 | number u8
		value := int16(binary.LittleEndian.Uint16(buf[4:6]))
		typ := buf[6] &^ jsEventInit
		number := int(buf[7])
		if typ != jsEventButton || number >= maxJSButtons {
			continue
		}
		js.mu.Lock()
		js.buttons[number] = value != 0
		js.mu.Unlock()
	}
}

// Pads reports the single device as pad 0 while it is readable
func (js *JoystickSource) Pads() []PadState {
	js.mu.Lock()
	defer js.mu.Unlock()
	if !js.connected {
		return nil
	}
	return []PadState{{Index: 0, Buttons: append([]bool(nil), js.buttons...)}}
}

// Close releases the device
func (js *JoystickSource) Close() error {
	return js.file.Close()
}
