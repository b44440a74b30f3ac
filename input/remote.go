package input

import "strings"

// ParseRemote maps a websocket client message type to an intent
// "touch" is a tap on the scene, which brakes like the original touch handler
func ParseRemote(msgType string) Intent {
	switch strings.ToLower(strings.TrimSpace(msgType)) {
	case "start":
		return IntentStart
	case "brake", "touch":
		return IntentBrake
	case "restart":
		return IntentRestart
	default:
		return IntentNone
	}
}
