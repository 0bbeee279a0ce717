package engine

import (
	"bytes"
	"io"
	"math"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/reprise/internal/config"
)

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		percent int
		want    float64
	}{
		{100, 0},
		{150, 0},
		{50, -1},
		{25, -2},
		{0, -10},
		{-5, -10},
	}
	for _, tt := range tests {
		if got := levelToVolume(tt.percent); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("levelToVolume(%d) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestSkipID3v2(t *testing.T) {
	tag := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 5}
	withTag := append(append(tag, []byte("junk!")...), []byte("fLaC")...)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"with tag", withTag, "fLaC"},
		{"without tag", []byte("fLaC-and-more"), "fLaC"},
		{"tiny file", []byte("fL"), "fL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			if err := skipID3v2(r); err != nil {
				t.Fatalf("skipID3v2() error = %v", err)
			}
			buf := make([]byte, len(tt.want))
			if _, err := io.ReadFull(r, buf); err != nil {
				t.Fatalf("read after skip: %v", err)
			}
			if string(buf) != tt.want {
				t.Errorf("read %q after skip, want %q", buf, tt.want)
			}
		})
	}
}

func TestDecoderFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"song.mp3", false},
		{"SONG.FLAC", false},
		{"take.wav", false},
		{"movie.mp4", true},
		{"noext", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := decoderFor(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("decoderFor(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestBeep_CommandsWithoutMedia(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	b := NewBeep(log)

	if err := b.Play(); err != ErrNoMedia {
		t.Errorf("Play() error = %v, want ErrNoMedia", err)
	}
	if err := b.Seek(0); err != ErrNoMedia {
		t.Errorf("Seek() error = %v, want ErrNoMedia", err)
	}
	if err := b.Pause(); err != nil {
		t.Errorf("Pause() error = %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := b.SetRate(0); err == nil {
		t.Error("SetRate(0) error = nil")
	}
	if err := b.SetRate(1.5); err != nil {
		t.Errorf("SetRate(1.5) error = %v", err)
	}
	if err := b.SetVolume(30); err != nil {
		t.Errorf("SetVolume() error = %v", err)
	}
	if b.HasAudio() || b.HasVideo() {
		t.Error("HasAudio/HasVideo true without media")
	}
	if b.Position() != 0 || b.Duration() != 0 {
		t.Error("non-zero position or duration without media")
	}
	if err := b.Load("clip.mp4"); err == nil {
		t.Error("Load(mp4) error = nil, want unsupported format")
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	e, err := New(config.EngineConfig{Backend: config.BackendBeep}, log)
	if err != nil {
		t.Fatalf("New(beep) error = %v", err)
	}
	if _, ok := e.(*Beep); !ok {
		t.Errorf("New(beep) = %T, want *Beep", e)
	}

	if _, err := New(config.EngineConfig{Backend: "vlc"}, log); err == nil {
		t.Error("New(vlc) error = nil, want error")
	}

	if _, err := New(config.EngineConfig{Backend: config.BackendMPV, MPVPath: "/nonexistent/mpv"}, log); err == nil {
		t.Error("New(mpv) with missing binary error = nil, want error")
	}
}
