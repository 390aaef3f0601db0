// Package domain defines the core types and interfaces for the home assistant.
// All other packages depend on domain; domain depends on nothing.
package domain

// DeviceName identifies one of the simulated devices.
type DeviceName string

const (
	Light          DeviceName = "light"
	TV             DeviceName = "tv"
	Thermostat     DeviceName = "thermostat"
	Fan            DeviceName = "fan"
	DoorLock       DeviceName = "door_lock"
	Blinds         DeviceName = "blinds"
	Speaker        DeviceName = "speaker"
	Oven           DeviceName = "oven"
	Vacuum         DeviceName = "vacuum"
	GarageDoor     DeviceName = "garage_door"
	Sprinkler      DeviceName = "sprinkler"
	Humidifier     DeviceName = "humidifier"
	CoffeeMaker    DeviceName = "coffee_maker"
	SecurityCamera DeviceName = "security_camera"
)

// DeviceOrder is the canonical device order. Home status reports and bulk
// operations walk devices in this order.
var DeviceOrder = []DeviceName{
	Light, TV, Thermostat, Fan, DoorLock, Blinds, Speaker,
	Oven, Vacuum, GarageDoor, Sprinkler, Humidifier, CoffeeMaker, SecurityCamera,
}

// ParseDevice returns the device with the given name and true, or false if
// the name is not one of the known devices.
func ParseDevice(name string) (DeviceName, bool) {
	for _, d := range DeviceOrder {
		if string(d) == name {
			return d, true
		}
	}
	return "", false
}

// State is the primary state of a device. Its domain depends on the device:
// on/off for switches, locked/unlocked for the door lock, open/closed for
// covers.
type State string

const (
	StateOn       State = "on"
	StateOff      State = "off"
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
	StateOpen     State = "open"
	StateClosed   State = "closed"
)

// Defaults applied when a registry is created or reset.
const (
	DefaultThermostatTemp = 22
	DefaultOvenTemp       = 0
	DefaultHumidityLevel  = 50
)

// Inclusive bounds enforced by the setter intents.
const (
	MinThermostatTemp = 10
	MaxThermostatTemp = 30
	MinOvenTemp       = 100
	MaxOvenTemp       = 250
	MinHumidityLevel  = 30
	MaxHumidityLevel  = 70
)

// Device is the mutable attribute record for a single device.
// Temperature is meaningful for the thermostat and oven, Level for the
// humidifier and Playing for the speaker. Location is a single free-form
// tag: the last location mentioned for the device, or empty.
type Device struct {
	Name        DeviceName
	State       State
	Location    string
	Temperature int
	Level       int
	Playing     string
}

// NewDevice returns a device initialised to its factory defaults.
func NewDevice(name DeviceName) *Device {
	d := &Device{Name: name, State: StateOff}
	switch name {
	case DoorLock:
		d.State = StateLocked
	case Blinds, GarageDoor:
		d.State = StateClosed
	case Thermostat:
		d.Temperature = DefaultThermostatTemp
	case Oven:
		d.Temperature = DefaultOvenTemp
	case Humidifier:
		d.Level = DefaultHumidityLevel
	}
	return d
}
