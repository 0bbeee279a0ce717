package engine

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
)

const (
	speakerRate      = beep.SampleRate(44100)
	resampleQuality  = 4
	positionInterval = 250 * time.Millisecond
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	return speakerErr
}

// Beep is an audio-only engine on the gopxl/beep speaker.
//
// The chain is decoder → (resample to speaker rate) → Ctrl (pause) →
// Resampler (playback rate) → Volume. Lock order: b.mu, then speaker.Lock.
type Beep struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	state    State
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	rater    *beep.Resampler
	volume   *effects.Volume
	queued   bool // chain is in the speaker mixer
	eof      bool
	gen      uint64
	tickStop chan struct{}
	closed   bool

	rate    float64
	percent int

	ev emitter
}

// NewBeep creates an audio engine. The speaker is opened on first Load.
func NewBeep(log logrus.FieldLogger) *Beep {
	return &Beep{
		log:     log.WithField("engine", "beep"),
		state:   Stopped,
		rate:    1,
		percent: 100,
		ev:      newEmitter(),
	}
}

func decoderFor(path string) (func(*os.File) (beep.StreamSeekCloser, beep.Format, error), error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			return decodeMP3(f)
		}, nil
	case ".flac":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			// Some taggers prepend ID3v2 to FLAC files
			if err := skipID3v2(f); err != nil {
				return nil, beep.Format{}, err
			}
			return flac.Decode(f)
		}, nil
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(f)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

func (b *Beep) Load(path string) error {
	decode, err := decoderFor(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.releaseLocked()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return err
	}
	if err := initSpeaker(); err != nil {
		streamer.Close()
		f.Close()
		return fmt.Errorf("init speaker: %w", err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		s = beep.Resample(resampleQuality, format.SampleRate, speakerRate, streamer)
	}

	b.gen++
	b.path = path
	b.file = f
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	b.rater = beep.ResampleRatio(resampleQuality, b.rate, b.ctrl)
	b.volume = &effects.Volume{
		Streamer: b.rater,
		Base:     2,
		Volume:   levelToVolume(b.percent),
		Silent:   b.percent == 0,
	}
	b.eof = false
	b.setStateLocked(Stopped)

	b.ev.emit(Event{Kind: DurationChanged, Duration: format.SampleRate.D(streamer.Len())})
	b.ev.emit(Event{Kind: TracksChanged, HasAudio: true})
	b.ev.emit(Event{Kind: PositionChanged})

	b.log.WithFields(logrus.Fields{
		"path":        path,
		"sample_rate": int(format.SampleRate),
	}).Debug("media loaded")
	return nil
}

// releaseLocked removes the current chain from the speaker and closes it.
func (b *Beep) releaseLocked() {
	b.stopTickerLocked()
	if b.queued {
		speaker.Clear()
		b.queued = false
	}
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	if b.file != nil {
		b.file.Close()
		b.file = nil
	}
	b.ctrl = nil
	b.rater = nil
	b.volume = nil
	b.path = ""
	b.gen++
}

func (b *Beep) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
	b.setStateLocked(Stopped)
	return nil
}

func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return ErrNoMedia
	}
	if b.eof {
		speaker.Lock()
		err := b.streamer.Seek(0)
		speaker.Unlock()
		if err != nil {
			return err
		}
		b.eof = false
	}

	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()

	if !b.queued {
		gen := b.gen
		speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker lock held
			go b.finished(gen)
		})))
		b.queued = true
	}

	b.setStateLocked(Playing)
	b.startTickerLocked()
	return nil
}

func (b *Beep) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Playing || b.ctrl == nil {
		return nil
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()

	b.stopTickerLocked()
	b.setStateLocked(Paused)
	b.ev.emit(Event{Kind: PositionChanged, Position: b.positionLocked()})
	return nil
}

// Stop pauses and rewinds, keeping the file loaded.
func (b *Beep) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopTickerLocked()
	if b.streamer == nil {
		b.setStateLocked(Stopped)
		return nil
	}

	speaker.Lock()
	b.ctrl.Paused = true
	err := b.streamer.Seek(0)
	speaker.Unlock()

	b.eof = false
	b.setStateLocked(Stopped)
	b.ev.emit(Event{Kind: PositionChanged})
	return err
}

func (b *Beep) Seek(position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return ErrNoMedia
	}

	n := min(max(b.format.SampleRate.N(position), 0), b.streamer.Len())

	speaker.Lock()
	err := b.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return err
	}

	b.eof = false
	b.ev.emit(Event{Kind: PositionChanged, Position: b.format.SampleRate.D(n)})
	return nil
}

func (b *Beep) SetRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) {
		return fmt.Errorf("invalid rate %v", rate)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.rate = rate
	if b.rater != nil {
		speaker.Lock()
		b.rater.SetRatio(rate)
		speaker.Unlock()
	}
	return nil
}

func (b *Beep) SetVolume(percent int) error {
	percent = min(max(percent, 0), 100)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.percent = percent
	if b.volume != nil {
		speaker.Lock()
		b.volume.Volume = levelToVolume(percent)
		b.volume.Silent = percent == 0
		speaker.Unlock()
	}
	return nil
}

func (b *Beep) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Beep) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionLocked()
}

func (b *Beep) positionLocked() time.Duration {
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	p := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(p)
}

func (b *Beep) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len())
}

func (b *Beep) HasAudio() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamer != nil
}

func (b *Beep) HasVideo() bool { return false }

func (b *Beep) Events() <-chan Event { return b.ev.events() }

func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
	b.closed = true
	return nil
}

// finished handles the end of the stream for load generation gen.
func (b *Beep) finished(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen || b.streamer == nil {
		return
	}
	b.queued = false
	b.eof = true
	b.stopTickerLocked()
	b.setStateLocked(Stopped)
	b.ev.emit(Event{Kind: EndOfFile, Position: b.format.SampleRate.D(b.streamer.Len())})
}

func (b *Beep) startTickerLocked() {
	if b.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	b.tickStop = stop
	gen := b.gen

	go func() {
		ticker := time.NewTicker(positionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.mu.Lock()
				if gen == b.gen && b.state == Playing {
					b.ev.emit(Event{Kind: PositionChanged, Position: b.positionLocked()})
				}
				b.mu.Unlock()
			}
		}
	}()
}

func (b *Beep) stopTickerLocked() {
	if b.tickStop != nil {
		close(b.tickStop)
		b.tickStop = nil
	}
}

func (b *Beep) setStateLocked(s State) {
	if b.state == s {
		return
	}
	b.state = s
	b.ev.emit(Event{Kind: StateChanged, State: s})
}

// levelToVolume converts a 0-100 percent level to beep's base-2 Volume.
// 100 → 0, 50 → -1, 25 → -2; 0 maps to -10 and is additionally silenced.
func levelToVolume(percent int) float64 {
	if percent <= 0 {
		return -10
	}
	if percent >= 100 {
		return 0
	}
	return math.Log2(float64(percent) / 100)
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of r.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

var _ Interface = (*Beep)(nil)
