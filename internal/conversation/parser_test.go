package conversation

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

func TestRuleParserKinds(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewRuleParser(log)
	ctx := context.Background()

	tests := []struct {
		input    string
		wantType domain.IntentType
	}{
		// Greetings (prefix match, so anything starting with "hi" counts).
		{"hello", domain.IntentGreeting},
		{"Hi there", domain.IntentGreeting},
		{"highlight the kitchen", domain.IntentGreeting},
		{"thank you", domain.IntentGreeting},
		{"finally thank you", domain.IntentFarewell},

		// Devices
		{"turn on the light", domain.IntentDeviceToggle},
		{"  TURN OFF THE TV  ", domain.IntentDeviceToggle},
		{"turn on the kitchen light", domain.IntentLightToggle},
		{"turn on the sprinkler", domain.IntentSprinkler},
		{"set the temperature to 24", domain.IntentSetTemperature},
		{"lock the door", domain.IntentDoorLock},
		{"unlock the door_lock in the hall", domain.IntentDoorLock},
		{"open the blinds", domain.IntentOpenClose},
		{"close the garage_door", domain.IntentOpenClose},
		{"play jazz on the speaker", domain.IntentPlayMusic},
		{"set the oven to 180 degrees", domain.IntentSetOven},
		{"start the vacuum", domain.IntentStartVacuum},
		{"set the humidifier to 40 percent", domain.IntentSetHumidifier},
		{"make coffee", domain.IntentMakeCoffee},

		// Queries
		{"is the light on", domain.IntentStatusCheck},
		{"is the speaker playing", domain.IntentStatusCheck},
		{"what is the temperature", domain.IntentTemperatureCheck},
		{"what is the humidity in the bedroom", domain.IntentHumidityCheck},
		{"what is the oven temperature", domain.IntentOvenTempCheck},
		{"what is the status of my home", domain.IntentHomeStatus},
		{"can you check if the house is secure", domain.IntentSecurityCheck},

		// Recipes
		{"make pasta", domain.IntentCookDish},
		{"cook chicken in the kitchen", domain.IntentCookDish},
		{"what recipes can you provide", domain.IntentListRecipes},
		{"what should i cook for dinner", domain.IntentDinnerSuggestion},

		// Scenes and information
		{"how many devices can you control", domain.IntentDeviceCount},
		{"can you turn on all lights", domain.IntentAllLightsOn},
		{"can you turn off all devices", domain.IntentAllDevicesOff},
		{"can you set the home to night mode", domain.IntentNightMode},
		{"can you set the home to morning mode", domain.IntentMorningMode},
		{"what rooms are supported", domain.IntentRoomList},
		{"can you help me save energy", domain.IntentEnergySaving},
		{"how do i use the voice feature", domain.IntentVoiceHelp},
		{"what can you do", domain.IntentCapabilities},

		// No match
		{"", domain.IntentUnknown},
		{"fly me to the moon", domain.IntentUnknown},
		{"please turn on the light", domain.IntentUnknown},
		{"is the light", domain.IntentUnknown},
		{"turn on the toaster", domain.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type() != tt.wantType {
				t.Errorf("input %q: expected %s, got %s", tt.input, tt.wantType, intent.Type())
			}
		})
	}
}

func TestRuleParserCaptures(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewRuleParser(log)
	ctx := context.Background()

	tests := []struct {
		input string
		want  domain.Intent
	}{
		{"turn on the fan in the bedroom", domain.DeviceToggle{Device: domain.Fan, State: domain.StateOn, Location: "bedroom"}},
		{"turn off the coffee_maker", domain.DeviceToggle{Device: domain.CoffeeMaker, State: domain.StateOff}},
		{"set the temperature to 25 degrees in the living room", domain.SetTemperature{Degrees: 25, Location: "living"}},
		{"turn off the porch light", domain.LightToggle{State: domain.StateOff, Room: "porch"}},
		{"unlock the door", domain.LockDoor{State: domain.StateUnlocked}},
		{"lock the door_lock in the hall", domain.LockDoor{State: domain.StateLocked, Location: "hall"}},
		{"close the blinds in the office", domain.OpenClose{Device: domain.Blinds, State: domain.StateClosed, Location: "office"}},
		{"play rock on the speaker in the garage", domain.PlayMusic{Track: "rock", Location: "garage"}},
		{"set the oven to 99999999999999999999999", domain.SetOven{Degrees: math.MaxInt}},
		{"set the humidifier to 45", domain.SetHumidifier{Percent: 45}},
		{"is the light in the kitchen on", domain.StatusCheck{Device: domain.Light, Location: "kitchen", Query: "on"}},
		// Without a trailing state word the location group backtracks away.
		{"is the light in the kitchen", domain.StatusCheck{Device: domain.Light}},
		{"is the door_lock locked", domain.StatusCheck{Device: domain.DoorLock, Query: "locked"}},
		{"what is the oven temperature in the kitchen", domain.ReadingCheck{Kind: domain.IntentOvenTempCheck, Location: "kitchen"}},
		{"make sushi", domain.CookDish{Dish: "sushi"}},
		{"make crème", domain.CookDish{Dish: "crème"}},
		{"turn on the light in the café", domain.DeviceToggle{Device: domain.Light, State: domain.StateOn, Location: "café"}},
		{"turn on the küche light", domain.LightToggle{State: domain.StateOn, Room: "küche"}},
		{"play señora on the speaker", domain.PlayMusic{Track: "señora"}},
		{"is the light in the café on", domain.StatusCheck{Device: domain.Light, Location: "café", Query: "on"}},
		{"what is the temperature in the küche", domain.ReadingCheck{Kind: domain.IntentTemperatureCheck, Location: "küche"}},
		{"make coffee in the kitchen", domain.MakeCoffee{Location: "kitchen"}},
		{"hello", domain.Fixed{Kind: domain.IntentGreeting, Text: helloText}},
		{"thank you so much", domain.Fixed{Kind: domain.IntentGreeting, Text: thanksText}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("input %q:\n  got  %#v\n  want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuleParserTableOrder(t *testing.T) {
	parser := NewRuleParser(logger.New(logger.LevelOff, nil))
	kinds := parser.Kinds()

	if len(kinds) != 32 {
		t.Fatalf("expected 32 rules, got %d", len(kinds))
	}
	if kinds[0] != domain.IntentGreeting || kinds[len(kinds)-1] != domain.IntentCapabilities {
		t.Fatalf("unexpected table bounds: %s ... %s", kinds[0], kinds[len(kinds)-1])
	}
}
