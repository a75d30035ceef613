// Package mute controls the system output mute state so clips are heard
// even when the desktop is muted: playback unmutes the output, and a
// poller restores the mute once the board goes idle.
package mute

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
)

// Controller reads and writes the system output mute state.
type Controller interface {
	// Muted returns the current mute state of the default output.
	Muted() (bool, error)

	// SetMuted mutes or unmutes the default output.
	SetMuted(muted bool) error
}

// PulseController controls the fallback sink over the PulseAudio D-Bus
// core API (requires module-dbus-protocol).
type PulseController struct {
	conn *dbus.Conn
}

// NewPulseController connects to the PulseAudio server's D-Bus socket. The
// address comes from PULSE_DBUS_SERVER or the session-bus server lookup
// object.
func NewPulseController() (*PulseController, error) {
	address := os.Getenv("PULSE_DBUS_SERVER")
	if address == "" {
		var err error
		address, err = lookupServerAddress()
		if err != nil {
			return nil, err
		}
	}

	conn, err := dbus.Dial(address)
	if err != nil {
		return nil, fmt.Errorf("dial pulseaudio bus: %w", err)
	}
	// Peer-to-peer connection: authenticate, but no Hello.
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("authenticate pulseaudio bus: %w", err)
	}

	return &PulseController{conn: conn}, nil
}

// lookupServerAddress asks the session bus where the PulseAudio D-Bus
// socket lives.
func lookupServerAddress() (string, error) {
	session, err := dbus.SessionBus()
	if err != nil {
		return "", fmt.Errorf("connect to session bus: %w", err)
	}

	obj := session.Object("org.PulseAudio1", "/org/pulseaudio/server_lookup1")
	variant, err := obj.GetProperty("org.PulseAudio.ServerLookup1.Address")
	if err != nil {
		return "", fmt.Errorf("look up pulseaudio address: %w", err)
	}

	address, ok := variant.Value().(string)
	if !ok || address == "" {
		return "", fmt.Errorf("pulseaudio address property has unexpected value %v", variant)
	}
	return address, nil
}

// fallbackSink returns the object path of the default output device.
func (c *PulseController) fallbackSink() (dbus.ObjectPath, error) {
	core := c.conn.Object("org.PulseAudio.Core1", "/org/pulseaudio/core1")
	variant, err := core.GetProperty("org.PulseAudio.Core1.FallbackSink")
	if err != nil {
		return "", fmt.Errorf("get fallback sink: %w", err)
	}

	path, ok := variant.Value().(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("fallback sink property has unexpected value %v", variant)
	}
	return path, nil
}

// Muted returns the mute state of the default output.
func (c *PulseController) Muted() (bool, error) {
	sink, err := c.fallbackSink()
	if err != nil {
		return false, err
	}

	device := c.conn.Object("org.PulseAudio.Core1.Device", sink)
	variant, err := device.GetProperty("org.PulseAudio.Core1.Device.Mute")
	if err != nil {
		return false, fmt.Errorf("get mute state: %w", err)
	}

	muted, ok := variant.Value().(bool)
	if !ok {
		return false, fmt.Errorf("mute property has unexpected value %v", variant)
	}
	return muted, nil
}

// SetMuted mutes or unmutes the default output.
func (c *PulseController) SetMuted(muted bool) error {
	sink, err := c.fallbackSink()
	if err != nil {
		return err
	}

	device := c.conn.Object("org.PulseAudio.Core1.Device", sink)
	call := device.Call("org.freedesktop.DBus.Properties.Set", 0,
		"org.PulseAudio.Core1.Device", "Mute", dbus.MakeVariant(muted))
	if call.Err != nil {
		return fmt.Errorf("set mute state: %w", call.Err)
	}
	return nil
}

// Close releases the bus connection.
func (c *PulseController) Close() error {
	return c.conn.Close()
}
