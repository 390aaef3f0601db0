package speech

import (
	"encoding/binary"
	"testing"
)

// makeWAV builds a canonical 16-bit PCM WAV file.
func makeWAV(rate, channels int, samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	b := make([]byte, 44, 44+len(data))
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(36+len(data)))
	copy(b[8:], "WAVE")
	copy(b[12:], "fmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1)
	binary.LittleEndian.PutUint16(b[22:], uint16(channels))
	binary.LittleEndian.PutUint32(b[24:], uint32(rate))
	binary.LittleEndian.PutUint32(b[28:], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(b[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	binary.LittleEndian.PutUint32(b[40:], uint32(len(data)))
	return append(b, data...)
}

func samplesOf(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestDecodePCM_Mono(t *testing.T) {
	in := []int16{0, 1000, -1000, 32767, -32768}
	pcm, err := decodePCM(makeWAV(SampleRate, 1, in))
	if err != nil {
		t.Fatalf("decodePCM: %v", err)
	}
	got := samplesOf(pcm)
	if len(got) != len(in) {
		t.Fatalf("got %d samples, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], in[i])
		}
	}
}

func TestDecodePCM_DownmixesStereo(t *testing.T) {
	pcm, err := decodePCM(makeWAV(SampleRate, 2, []int16{100, 300, -200, -400}))
	if err != nil {
		t.Fatalf("decodePCM: %v", err)
	}
	got := samplesOf(pcm)
	if len(got) != 2 || got[0] != 200 || got[1] != -300 {
		t.Errorf("got %v, want [200 -300]", got)
	}
}

func TestDecodePCM_Resamples(t *testing.T) {
	pcm, err := decodePCM(makeWAV(SampleRate/2, 1, make([]int16, 8)))
	if err != nil {
		t.Fatalf("decodePCM: %v", err)
	}
	if n := len(pcm) / 2; n != 16 {
		t.Errorf("got %d samples, want 16", n)
	}
}

func TestDecodePCM_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("short"), []byte("this is definitely not a riff wave payload at all")} {
		if _, err := decodePCM(data); err == nil {
			t.Errorf("decodePCM(%q) succeeded", data)
		}
	}
}

func TestResample(t *testing.T) {
	got := resample([]int16{0, 100}, 12000, 24000)
	want := []int16{0, 50, 100, 100}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestToInt16(t *testing.T) {
	tests := []struct {
		v, depth, want int
	}{
		{128, 8, 0},
		{255, 8, 127 << 8},
		{1 << 16, 24, 1 << 8},
		{1 << 20, 32, 16},
		{-5, 16, -5},
	}
	for _, tt := range tests {
		if got := toInt16(tt.v, tt.depth); got != tt.want {
			t.Errorf("toInt16(%d, %d) = %d, want %d", tt.v, tt.depth, got, tt.want)
		}
	}
}
