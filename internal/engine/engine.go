// Package engine interprets home commands against one device registry.
//
// An Engine is not safe for concurrent use. Callers that share an engine
// between goroutines must serialize Handle calls (see package session).
package engine

import (
	"context"

	"github.com/hammamikhairi/ottohome/internal/conversation"
	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
	"github.com/hammamikhairi/ottohome/internal/registry"
)

// Option configures the engine.
type Option func(*Engine)

// WithParser replaces the default rule parser.
func WithParser(p domain.IntentParser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithRegistry makes the engine operate on an existing registry instead of
// a fresh one.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.devices = r
	}
}

// WithObserver registers a callback invoked with the intent of every
// handled utterance. Used for metrics.
func WithObserver(fn func(domain.IntentType)) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// Engine owns a device registry and turns utterances into replies.
type Engine struct {
	parser  domain.IntentParser
	recipes domain.RecipeCatalog
	devices *registry.Registry
	log     *logger.Logger
	observe func(domain.IntentType)
}

// New creates an engine with its own registry at factory defaults.
func New(recipes domain.RecipeCatalog, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes: recipes,
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parser == nil {
		e.parser = conversation.NewRuleParser(log)
	}
	if e.devices == nil {
		e.devices = registry.New()
	}
	return e
}

// Interpret returns only the reply text for the utterance.
func (e *Engine) Interpret(ctx context.Context, text string) string {
	return e.Handle(ctx, text).Text
}

// Handle parses the utterance, applies its effect to the registry and
// returns the structured reply. It never fails: unrecognized input yields
// the fallback text.
func (e *Engine) Handle(ctx context.Context, text string) domain.Reply {
	intent, err := e.parser.Parse(ctx, text)
	if err != nil {
		e.log.Warn("parser failed on %q: %v", text, err)
		intent = domain.Unknown{Input: text}
	}

	reply := e.dispatch(ctx, intent)
	reply.Intent = intent.Type()
	if e.observe != nil {
		e.observe(reply.Intent)
	}
	e.log.Debug("intent %s -> %q", reply.Intent, reply.Text)
	return reply
}

// Devices returns a snapshot of the registry in canonical order.
func (e *Engine) Devices() []domain.Device {
	return e.devices.Snapshot()
}

// Device returns one device record.
func (e *Engine) Device(name domain.DeviceName) (domain.Device, bool) {
	return e.devices.Get(name)
}

func (e *Engine) dispatch(ctx context.Context, intent domain.Intent) domain.Reply {
	r := e.devices
	switch in := intent.(type) {
	case domain.Fixed:
		return domain.Reply{Text: e.fixed(ctx, in)}

	case domain.DeviceToggle:
		r.SetState(in.Device, in.State)
		r.SetLocation(in.Device, in.Location)
		return text("The %s%s has been turned %s.", in.Device, inThe(in.Location), in.State)

	case domain.SetTemperature:
		if !within(in.Degrees, domain.MinThermostatTemp, domain.MaxThermostatTemp) {
			return text("Please choose a temperature between %d and %d degrees.", domain.MinThermostatTemp, domain.MaxThermostatTemp)
		}
		r.SetTemperature(domain.Thermostat, in.Degrees)
		r.SetLocation(domain.Thermostat, in.Location)
		return text("The temperature%s has been set to %d degrees.", inThe(in.Location), in.Degrees)

	case domain.LightToggle:
		r.SetState(domain.Light, in.State)
		r.SetLocation(domain.Light, in.Room)
		return text("The %s light has been turned %s.", in.Room, in.State)

	case domain.LockDoor:
		r.SetState(domain.DoorLock, in.State)
		r.SetLocation(domain.DoorLock, in.Location)
		return text("The door%s has been %s.", inThe(in.Location), in.State)

	case domain.OpenClose:
		r.SetState(in.Device, in.State)
		r.SetLocation(in.Device, in.Location)
		verb := "opened"
		if in.State == domain.StateClosed {
			verb = "closed"
		}
		return text("The %s%s has been %s.", in.Device, inThe(in.Location), verb)

	case domain.PlayMusic:
		r.SetState(domain.Speaker, domain.StateOn)
		r.SetPlaying(domain.Speaker, in.Track)
		r.SetLocation(domain.Speaker, in.Location)
		return text("Playing %s on the speaker%s.", in.Track, inThe(in.Location))

	case domain.SetOven:
		if !within(in.Degrees, domain.MinOvenTemp, domain.MaxOvenTemp) {
			return text("Please choose an oven temperature between %d and %d degrees.", domain.MinOvenTemp, domain.MaxOvenTemp)
		}
		r.SetState(domain.Oven, domain.StateOn)
		r.SetTemperature(domain.Oven, in.Degrees)
		r.SetLocation(domain.Oven, in.Location)
		return text("The oven%s has been set to %d degrees.", inThe(in.Location), in.Degrees)

	case domain.StartVacuum:
		r.SetState(domain.Vacuum, domain.StateOn)
		r.SetLocation(domain.Vacuum, in.Location)
		return text("The vacuum%s has been started.", inThe(in.Location))

	case domain.SetSprinkler:
		r.SetState(domain.Sprinkler, in.State)
		r.SetLocation(domain.Sprinkler, in.Location)
		return text("The sprinkler%s has been turned %s.", inThe(in.Location), in.State)

	case domain.SetHumidifier:
		if !within(in.Percent, domain.MinHumidityLevel, domain.MaxHumidityLevel) {
			return text("Please choose a humidity level between %d and %d%%.", domain.MinHumidityLevel, domain.MaxHumidityLevel)
		}
		r.SetState(domain.Humidifier, domain.StateOn)
		r.SetLevel(domain.Humidifier, in.Percent)
		r.SetLocation(domain.Humidifier, in.Location)
		return text("The humidifier%s has been set to %d%%.", inThe(in.Location), in.Percent)

	case domain.MakeCoffee:
		r.SetState(domain.CoffeeMaker, domain.StateOn)
		r.SetLocation(domain.CoffeeMaker, in.Location)
		return text("The coffee maker%s is brewing coffee.", inThe(in.Location))

	case domain.StatusCheck:
		return e.status(in)

	case domain.ReadingCheck:
		return e.reading(in)

	case domain.CookDish:
		return e.cook(ctx, in)

	default:
		return domain.Reply{Text: domain.FallbackText}
	}
}

// fixed applies the scene effects of argument-less intents and returns
// their reply text.
func (e *Engine) fixed(ctx context.Context, in domain.Fixed) string {
	r := e.devices
	switch in.Kind {
	case domain.IntentAllLightsOn:
		r.SetState(domain.Light, domain.StateOn)
	case domain.IntentAllDevicesOff:
		r.Reset()
	case domain.IntentNightMode:
		r.SetState(domain.Light, domain.StateOff)
		r.SetState(domain.Blinds, domain.StateClosed)
		r.SetState(domain.SecurityCamera, domain.StateOn)
	case domain.IntentMorningMode:
		r.SetState(domain.Blinds, domain.StateOpen)
		r.SetState(domain.CoffeeMaker, domain.StateOn)
		r.SetState(domain.Light, domain.StateOn)
	case domain.IntentDeviceCount:
		return deviceCountLine(r.Len())
	case domain.IntentListRecipes:
		return listRecipesLine(e.recipes.Names())
	case domain.IntentHomeStatus:
		return homeStatusLines(r.Snapshot())
	case domain.IntentSecurityCheck:
		door, _ := r.Get(domain.DoorLock)
		camera, _ := r.Get(domain.SecurityCamera)
		return securityLine(door, camera)
	}
	return in.Text
}

func (e *Engine) status(in domain.StatusCheck) domain.Reply {
	d, ok := e.devices.Get(in.Device)
	if !ok {
		return domain.Reply{Text: domain.FallbackText}
	}
	if in.Location != "" && in.Location != d.Location {
		return text("No %s in the %s found.", in.Device, in.Location)
	}
	if in.Device == domain.Speaker && in.Query == "playing" {
		if d.Playing == "" {
			return text("The speaker is not playing.")
		}
		return text("The speaker is playing %s.", d.Playing)
	}
	return text("The %s%s is %s.", in.Device, inThe(d.Location), d.State)
}

func (e *Engine) reading(in domain.ReadingCheck) domain.Reply {
	switch in.Kind {
	case domain.IntentTemperatureCheck:
		d, _ := e.devices.Get(domain.Thermostat)
		if mismatch(in.Location, d.Location) {
			return text("No thermostat in the %s found.", in.Location)
		}
		return text("The temperature%s is %d degrees.", inThe(d.Location), d.Temperature)
	case domain.IntentHumidityCheck:
		d, _ := e.devices.Get(domain.Humidifier)
		if mismatch(in.Location, d.Location) {
			return text("No humidifier in the %s found.", in.Location)
		}
		return text("The humidity%s is %d%%.", inThe(d.Location), d.Level)
	case domain.IntentOvenTempCheck:
		d, _ := e.devices.Get(domain.Oven)
		if mismatch(in.Location, d.Location) {
			return text("No oven in the %s found.", in.Location)
		}
		return text("The oven%s is set to %d degrees.", inThe(d.Location), d.Temperature)
	}
	return domain.Reply{Text: domain.FallbackText}
}

func (e *Engine) cook(ctx context.Context, in domain.CookDish) domain.Reply {
	recipe, err := e.recipes.Get(ctx, in.Dish)
	if err != nil {
		e.log.Debug("no recipe for %q: %v", in.Dish, err)
		return text(unknownRecipeFormat, in.Dish)
	}
	videos := make([]string, len(recipe.VideoURLs))
	copy(videos, recipe.VideoURLs)
	return domain.Reply{Text: recipeMarkdown(in.Dish, recipe.Steps), VideoURLs: videos}
}

// mismatch reports whether a queried location differs from the stored one.
// No queried location always matches.
func mismatch(queried, stored string) bool {
	return queried != "" && queried != stored
}

func within(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
