package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentGreeting
	IntentDeviceToggle
	IntentSetTemperature
	IntentLightToggle
	IntentDoorLock
	IntentOpenClose
	IntentPlayMusic
	IntentSetOven
	IntentStartVacuum
	IntentSprinkler
	IntentSetHumidifier
	IntentMakeCoffee
	IntentStatusCheck
	IntentTemperatureCheck
	IntentHumidityCheck
	IntentOvenTempCheck
	IntentFarewell
	IntentCookDish
	IntentListRecipes
	IntentDeviceCount
	IntentAllLightsOn
	IntentAllDevicesOff
	IntentHomeStatus
	IntentNightMode
	IntentMorningMode
	IntentRoomList
	IntentEnergySaving
	IntentDinnerSuggestion
	IntentSecurityCheck
	IntentVoiceHelp
	IntentCapabilities
)

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"unknown":               IntentUnknown,
	"greeting":              IntentGreeting,
	"device_toggle":         IntentDeviceToggle,
	"set_temperature":       IntentSetTemperature,
	"specific_light_toggle": IntentLightToggle,
	"door_lock":             IntentDoorLock,
	"open_close_device":     IntentOpenClose,
	"play_music":            IntentPlayMusic,
	"set_oven":              IntentSetOven,
	"start_vacuum":          IntentStartVacuum,
	"sprinkler_control":     IntentSprinkler,
	"set_humidifier":        IntentSetHumidifier,
	"make_coffee":           IntentMakeCoffee,
	"status_check":          IntentStatusCheck,
	"temperature_check":     IntentTemperatureCheck,
	"humidity_check":        IntentHumidityCheck,
	"oven_temp_check":       IntentOvenTempCheck,
	"farewell":              IntentFarewell,
	"cook_dish":             IntentCookDish,
	"list_recipes":          IntentListRecipes,
	"device_count":          IntentDeviceCount,
	"all_lights_on":         IntentAllLightsOn,
	"all_devices_off":       IntentAllDevicesOff,
	"home_status":           IntentHomeStatus,
	"night_mode":            IntentNightMode,
	"morning_mode":          IntentMorningMode,
	"room_list":             IntentRoomList,
	"energy_saving":         IntentEnergySaving,
	"dinner_suggestion":     IntentDinnerSuggestion,
	"security_check":        IntentSecurityCheck,
	"voice_help":            IntentVoiceHelp,
	"capabilities":          IntentCapabilities,
}

// String returns the snake_case intent name.
func (i IntentType) String() string {
	for name, t := range intentNames {
		if t == i {
			return name
		}
	}
	return "unknown"
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}

// Intent is a parsed user command. Each concrete type below carries exactly
// the fields its handler needs; the engine dispatches on the concrete type.
type Intent interface {
	Type() IntentType
}

// Fixed is an intent with no arguments and a canned reply: greetings,
// informational answers and the bulk scene operations (all lights on,
// all off, night/morning mode).
type Fixed struct {
	Kind IntentType
	Text string
}

// DeviceToggle turns a switchable device on or off.
type DeviceToggle struct {
	Device   DeviceName
	State    State
	Location string
}

// SetTemperature sets the thermostat target.
type SetTemperature struct {
	Degrees  int
	Location string
}

// LightToggle toggles the light while tagging it with a room.
type LightToggle struct {
	State State
	Room  string
}

// LockDoor locks or unlocks the door lock.
type LockDoor struct {
	State    State
	Location string
}

// OpenClose opens or closes the blinds or the garage door.
type OpenClose struct {
	Device   DeviceName
	State    State
	Location string
}

// PlayMusic starts a track on the speaker.
type PlayMusic struct {
	Track    string
	Location string
}

// SetOven turns the oven on at the given temperature.
type SetOven struct {
	Degrees  int
	Location string
}

// StartVacuum starts the vacuum.
type StartVacuum struct {
	Location string
}

// SetSprinkler turns the sprinkler on or off.
type SetSprinkler struct {
	State    State
	Location string
}

// SetHumidifier turns the humidifier on at the given level.
type SetHumidifier struct {
	Percent  int
	Location string
}

// MakeCoffee starts the coffee maker.
type MakeCoffee struct {
	Location string
}

// StatusCheck asks for the state of one device. Query is the trailing
// state word ("on", "playing", ...), possibly empty.
type StatusCheck struct {
	Device   DeviceName
	Location string
	Query    string
}

// ReadingCheck asks for a numeric reading: the thermostat temperature,
// the humidity level or the oven temperature, selected by Kind.
type ReadingCheck struct {
	Kind     IntentType
	Location string
}

// CookDish asks for a recipe.
type CookDish struct {
	Dish     string
	Location string
}

// Unknown is returned when no rule matched.
type Unknown struct {
	Input string
}

func (f Fixed) Type() IntentType { return f.Kind }
func (DeviceToggle) Type() IntentType { return IntentDeviceToggle }
func (SetTemperature) Type() IntentType { return IntentSetTemperature }
func (LightToggle) Type() IntentType { return IntentLightToggle }
func (LockDoor) Type() IntentType { return IntentDoorLock }
func (OpenClose) Type() IntentType { return IntentOpenClose }
func (PlayMusic) Type() IntentType { return IntentPlayMusic }
func (SetOven) Type() IntentType { return IntentSetOven }
func (StartVacuum) Type() IntentType { return IntentStartVacuum }
func (SetSprinkler) Type() IntentType { return IntentSprinkler }
func (SetHumidifier) Type() IntentType { return IntentSetHumidifier }
func (MakeCoffee) Type() IntentType { return IntentMakeCoffee }
func (StatusCheck) Type() IntentType { return IntentStatusCheck }
func (r ReadingCheck) Type() IntentType { return r.Kind }
func (CookDish) Type() IntentType { return IntentCookDish }
func (Unknown) Type() IntentType { return IntentUnknown }
