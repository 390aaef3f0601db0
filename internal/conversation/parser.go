// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*RuleParser)(nil)

// RuleParser matches normalized input against an ordered rule table.
// Every pattern is anchored at the start of the input only, so trailing
// words are ignored. The first rule whose pattern matches and whose
// builder accepts the captures wins.
type RuleParser struct {
	log   *logger.Logger
	rules []rule
}

type rule struct {
	regex *regexp.Regexp
	kind  domain.IntentType
	build func(m captures) (domain.Intent, bool)
}

// captures gives access to named groups of one match. Groups that did not
// participate in the match read as "".
type captures map[string]string

func (c captures) num(name string) int {
	n, err := strconv.Atoi(c[name])
	if err != nil {
		// Only \d+ reaches here, so the sole failure is overflow.
		return math.MaxInt
	}
	return n
}

// Canned replies from the rule table.
const (
	helloText        = "Hello! How can I assist with your smart home or cooking?"
	thanksText       = "Have a great day!"
	farewellText     = "You're welcome! Have a great day!"
	allLightsOnText  = "All lights have been turned on."
	allOffText       = "All devices have been turned off."
	nightModeText    = "Night mode activated: lights dimmed, blinds closed, and security camera on."
	morningModeText  = "Morning mode activated: blinds opened, coffee maker started, and lights turned on."
	roomListText     = "I support commands for any room you specify, like living room, bedroom, kitchen, or garden. Just include the room in your command!"
	energyText       = "To save energy, turn off unused lights, set the thermostat to 20-22°C, and use the fan instead of air conditioning."
	dinnerText       = "How about making pasta? Say 'make pasta' for a recipe and video tutorials!"
	voiceHelpText    = "Click 'Speak Now' in the voice section, say your command clearly, and I’ll respond. Try 'turn on the light' or 'make pizza'!"
	capabilitiesText = "I can control home devices (like lights, thermostat, or oven), check statuses, provide recipes with video tutorials, and respond to voice or text commands."
)

const (
	// word is one word in any script; regexp's \w only covers ASCII.
	word         = `[\p{L}\p{N}_]+`
	loc          = `(?: in the (?P<loc>` + word + `))?`
	toggleDevs   = `light|tv|fan|speaker|oven|vacuum|humidifier|coffee_maker|security_camera`
	statusDevs   = `light|tv|fan|speaker|oven|vacuum|humidifier|coffee_maker|door_lock|blinds|garage_door|sprinkler|security_camera`
	statusStates = `on|off|locked|unlocked|open|closed|playing`
)

// NewRuleParser creates the parser with the full home command table.
func NewRuleParser(log *logger.Logger) *RuleParser {
	p := &RuleParser{log: log}
	p.rules = []rule{
		fixed(`hi|hello`, domain.IntentGreeting, helloText),
		fixed(`thank you`, domain.IntentGreeting, thanksText),
		{
			regex: compile(`turn (?P<state>on|off) the (?P<device>` + toggleDevs + `)` + loc),
			kind:  domain.IntentDeviceToggle,
			build: func(m captures) (domain.Intent, bool) {
				d, ok := domain.ParseDevice(m["device"])
				if !ok {
					return nil, false
				}
				return domain.DeviceToggle{Device: d, State: domain.State(m["state"]), Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`set the temperature to (?P<value>\d+)(?: degrees)?` + loc),
			kind:  domain.IntentSetTemperature,
			build: func(m captures) (domain.Intent, bool) {
				return domain.SetTemperature{Degrees: m.num("value"), Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`turn (?P<state>on|off) the (?P<room>` + word + `) light`),
			kind:  domain.IntentLightToggle,
			build: func(m captures) (domain.Intent, bool) {
				return domain.LightToggle{State: domain.State(m["state"]), Room: m["room"]}, true
			},
		},
		{
			regex: compile(`(?P<verb>lock|unlock) the (?:door_lock|door)` + loc),
			kind:  domain.IntentDoorLock,
			build: func(m captures) (domain.Intent, bool) {
				s := domain.StateLocked
				if m["verb"] == "unlock" {
					s = domain.StateUnlocked
				}
				return domain.LockDoor{State: s, Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`(?P<verb>open|close) the (?P<device>blinds|garage_door)` + loc),
			kind:  domain.IntentOpenClose,
			build: func(m captures) (domain.Intent, bool) {
				d, ok := domain.ParseDevice(m["device"])
				if !ok {
					return nil, false
				}
				s := domain.StateOpen
				if m["verb"] == "close" {
					s = domain.StateClosed
				}
				return domain.OpenClose{Device: d, State: s, Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`play (?P<track>` + word + `) on the speaker` + loc),
			kind:  domain.IntentPlayMusic,
			build: func(m captures) (domain.Intent, bool) {
				return domain.PlayMusic{Track: m["track"], Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`set the oven to (?P<value>\d+)(?: degrees)?` + loc),
			kind:  domain.IntentSetOven,
			build: func(m captures) (domain.Intent, bool) {
				return domain.SetOven{Degrees: m.num("value"), Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`start the vacuum` + loc),
			kind:  domain.IntentStartVacuum,
			build: func(m captures) (domain.Intent, bool) {
				return domain.StartVacuum{Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`turn (?P<state>on|off) the sprinkler` + loc),
			kind:  domain.IntentSprinkler,
			build: func(m captures) (domain.Intent, bool) {
				return domain.SetSprinkler{State: domain.State(m["state"]), Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`set the humidifier to (?P<value>\d+)(?: percent)?` + loc),
			kind:  domain.IntentSetHumidifier,
			build: func(m captures) (domain.Intent, bool) {
				return domain.SetHumidifier{Percent: m.num("value"), Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`make coffee` + loc),
			kind:  domain.IntentMakeCoffee,
			build: func(m captures) (domain.Intent, bool) {
				return domain.MakeCoffee{Location: m["loc"]}, true
			},
		},
		{
			regex: compile(`is the (?P<device>` + statusDevs + `)` + loc + ` (?P<query>` + statusStates + `)?`),
			kind:  domain.IntentStatusCheck,
			build: func(m captures) (domain.Intent, bool) {
				d, ok := domain.ParseDevice(m["device"])
				if !ok {
					return nil, false
				}
				return domain.StatusCheck{Device: d, Location: m["loc"], Query: m["query"]}, true
			},
		},
		reading(`what is the temperature`+loc, domain.IntentTemperatureCheck),
		reading(`what is the humidity`+loc, domain.IntentHumidityCheck),
		reading(`what is the oven temperature`+loc, domain.IntentOvenTempCheck),
		fixed(`finally thank you`, domain.IntentFarewell, farewellText),
		{
			regex: compile(`(?:make|cook) (?P<dish>` + word + `)` + loc),
			kind:  domain.IntentCookDish,
			build: func(m captures) (domain.Intent, bool) {
				return domain.CookDish{Dish: m["dish"], Location: m["loc"]}, true
			},
		},
		fixed(`what recipes can you provide`, domain.IntentListRecipes, ""),
		fixed(`how many devices can you control`, domain.IntentDeviceCount, ""),
		fixed(`can you turn on all lights`, domain.IntentAllLightsOn, allLightsOnText),
		fixed(`can you turn off all devices`, domain.IntentAllDevicesOff, allOffText),
		fixed(`what is the status of my home`, domain.IntentHomeStatus, ""),
		fixed(`can you set the home to night mode`, domain.IntentNightMode, nightModeText),
		fixed(`can you set the home to morning mode`, domain.IntentMorningMode, morningModeText),
		fixed(`what rooms are supported`, domain.IntentRoomList, roomListText),
		fixed(`can you help me save energy`, domain.IntentEnergySaving, energyText),
		fixed(`what should i cook for dinner`, domain.IntentDinnerSuggestion, dinnerText),
		fixed(`can you check if the house is secure`, domain.IntentSecurityCheck, ""),
		fixed(`how do i use the voice feature`, domain.IntentVoiceHelp, voiceHelpText),
		fixed(`what can you do`, domain.IntentCapabilities, capabilitiesText),
	}
	return p
}

// compile anchors a pattern at the start of the input.
func compile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pattern + `)`)
}

func fixed(pattern string, kind domain.IntentType, text string) rule {
	return rule{
		regex: compile(pattern),
		kind:  kind,
		build: func(captures) (domain.Intent, bool) {
			return domain.Fixed{Kind: kind, Text: text}, true
		},
	}
}

func reading(pattern string, kind domain.IntentType) rule {
	return rule{
		regex: compile(pattern),
		kind:  kind,
		build: func(m captures) (domain.Intent, bool) {
			return domain.ReadingCheck{Kind: kind, Location: m["loc"]}, true
		},
	}
}

// Normalize lower-cases and trims the input the way the rule table expects.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Parse converts user input into an intent. It never returns an error for
// unrecognized input; domain.Unknown is returned instead.
func (p *RuleParser) Parse(ctx context.Context, input string) (domain.Intent, error) {
	text := Normalize(input)
	if text == "" {
		return domain.Unknown{Input: text}, nil
	}

	p.log.Debug("parsing input: %q", text)

	for _, r := range p.rules {
		sub := r.regex.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		m := make(captures, len(sub))
		for i, name := range r.regex.SubexpNames() {
			if name != "" {
				m[name] = sub[i]
			}
		}
		intent, ok := r.build(m)
		if !ok {
			// Pattern matched but named an entity we don't have; keep scanning.
			p.log.Debug("rule %s matched but was rejected", r.kind)
			continue
		}
		p.log.Debug("matched intent: %s", r.kind)
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return domain.Unknown{Input: text}, nil
}

// Kinds returns the intent of every rule in table order.
func (p *RuleParser) Kinds() []domain.IntentType {
	out := make([]domain.IntentType, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.kind
	}
	return out
}
