package registry

import (
	"testing"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

func TestNewDefaults(t *testing.T) {
	r := New()

	if r.Len() != 14 {
		t.Fatalf("expected 14 devices, got %d", r.Len())
	}

	tests := []struct {
		name  domain.DeviceName
		state domain.State
	}{
		{domain.Light, domain.StateOff},
		{domain.TV, domain.StateOff},
		{domain.DoorLock, domain.StateLocked},
		{domain.Blinds, domain.StateClosed},
		{domain.GarageDoor, domain.StateClosed},
		{domain.SecurityCamera, domain.StateOff},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			d, ok := r.Get(tt.name)
			if !ok {
				t.Fatalf("device %s missing", tt.name)
			}
			if d.State != tt.state {
				t.Fatalf("expected %s, got %s", tt.state, d.State)
			}
			if d.Location != "" {
				t.Fatalf("expected no location, got %q", d.Location)
			}
		})
	}

	th, _ := r.Get(domain.Thermostat)
	if th.Temperature != 22 {
		t.Fatalf("expected thermostat 22, got %d", th.Temperature)
	}
	hum, _ := r.Get(domain.Humidifier)
	if hum.Level != 50 {
		t.Fatalf("expected humidifier 50, got %d", hum.Level)
	}
}

func TestSnapshotOrder(t *testing.T) {
	r := New()
	snap := r.Snapshot()
	if len(snap) != len(domain.DeviceOrder) {
		t.Fatalf("expected %d devices, got %d", len(domain.DeviceOrder), len(snap))
	}
	for i, d := range snap {
		if d.Name != domain.DeviceOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, domain.DeviceOrder[i], d.Name)
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	d, _ := r.Get(domain.Light)
	d.State = domain.StateOn

	again, _ := r.Get(domain.Light)
	if again.State != domain.StateOff {
		t.Fatal("mutating a returned device changed the registry")
	}
}

func TestSetLocationIgnoresEmpty(t *testing.T) {
	r := New()
	r.SetLocation(domain.Fan, "bedroom")
	r.SetLocation(domain.Fan, "")

	d, _ := r.Get(domain.Fan)
	if d.Location != "bedroom" {
		t.Fatalf("expected bedroom, got %q", d.Location)
	}
}

func TestReset(t *testing.T) {
	r := New()
	r.SetState(domain.Light, domain.StateOn)
	r.SetLocation(domain.Light, "kitchen")
	r.SetTemperature(domain.Thermostat, 28)
	r.SetTemperature(domain.Oven, 200)
	r.SetState(domain.Oven, domain.StateOn)
	r.SetLevel(domain.Humidifier, 65)
	r.SetPlaying(domain.Speaker, "jazz")

	r.Reset()

	for _, d := range r.Snapshot() {
		if d.State != domain.StateOff {
			t.Fatalf("%s: expected off, got %s", d.Name, d.State)
		}
	}
	if d, _ := r.Get(domain.Thermostat); d.Temperature != 22 {
		t.Fatalf("expected thermostat 22, got %d", d.Temperature)
	}
	if d, _ := r.Get(domain.Oven); d.Temperature != 0 {
		t.Fatalf("expected oven 0, got %d", d.Temperature)
	}
	if d, _ := r.Get(domain.Humidifier); d.Level != 50 {
		t.Fatalf("expected humidifier 50, got %d", d.Level)
	}
	if d, _ := r.Get(domain.Speaker); d.Playing != "" {
		t.Fatalf("expected speaker idle, got %q", d.Playing)
	}
	if d, _ := r.Get(domain.Light); d.Location != "kitchen" {
		t.Fatalf("reset should keep locations, got %q", d.Location)
	}
}

func TestSetterOnUnknownDeviceIsNoop(t *testing.T) {
	r := New()
	r.SetState("toaster", domain.StateOn)
	if _, ok := r.Get("toaster"); ok {
		t.Fatal("unknown device should not be created")
	}
}
