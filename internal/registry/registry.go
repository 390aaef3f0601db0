// Package registry holds the simulated device states for one home.
// A Registry performs no validation and no locking: the engine that owns
// it is the only writer, and the session manager serializes engine calls.
package registry

import "github.com/hammamikhairi/ottohome/internal/domain"

// Registry maps each known device to its current attributes.
type Registry struct {
	devices map[domain.DeviceName]*domain.Device
}

// New creates a registry with every device at its factory defaults.
func New() *Registry {
	r := &Registry{devices: make(map[domain.DeviceName]*domain.Device, len(domain.DeviceOrder))}
	for _, name := range domain.DeviceOrder {
		r.devices[name] = domain.NewDevice(name)
	}
	return r
}

// Names returns the device names in canonical order.
func (r *Registry) Names() []domain.DeviceName {
	out := make([]domain.DeviceName, len(domain.DeviceOrder))
	copy(out, domain.DeviceOrder)
	return out
}

// Len returns the number of devices.
func (r *Registry) Len() int { return len(r.devices) }

// Get returns a copy of the device record.
func (r *Registry) Get(name domain.DeviceName) (domain.Device, bool) {
	d, ok := r.devices[name]
	if !ok {
		return domain.Device{}, false
	}
	return *d, true
}

// Snapshot returns copies of all devices in canonical order.
func (r *Registry) Snapshot() []domain.Device {
	out := make([]domain.Device, 0, len(r.devices))
	for _, name := range domain.DeviceOrder {
		out = append(out, *r.devices[name])
	}
	return out
}

// SetState sets the primary state of a device.
func (r *Registry) SetState(name domain.DeviceName, s domain.State) {
	if d, ok := r.devices[name]; ok {
		d.State = s
	}
}

// SetLocation overwrites the location tag. An empty location leaves the
// stored one untouched, matching how commands without "in the ..." behave.
func (r *Registry) SetLocation(name domain.DeviceName, loc string) {
	if loc == "" {
		return
	}
	if d, ok := r.devices[name]; ok {
		d.Location = loc
	}
}

// SetTemperature sets the temperature of the thermostat or the oven.
func (r *Registry) SetTemperature(name domain.DeviceName, t int) {
	if d, ok := r.devices[name]; ok {
		d.Temperature = t
	}
}

// SetLevel sets the humidifier level.
func (r *Registry) SetLevel(name domain.DeviceName, level int) {
	if d, ok := r.devices[name]; ok {
		d.Level = level
	}
}

// SetPlaying sets the speaker track. Empty means nothing is playing.
func (r *Registry) SetPlaying(name domain.DeviceName, track string) {
	if d, ok := r.devices[name]; ok {
		d.Playing = track
	}
}

// Reset turns every device off and restores the numeric defaults.
// Locations are kept.
func (r *Registry) Reset() {
	for _, d := range r.devices {
		d.State = domain.StateOff
	}
	r.devices[domain.Thermostat].Temperature = domain.DefaultThermostatTemp
	r.devices[domain.Oven].Temperature = domain.DefaultOvenTemp
	r.devices[domain.Humidifier].Level = domain.DefaultHumidityLevel
	r.devices[domain.Speaker].Playing = ""
}
