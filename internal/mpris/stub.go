//go:build !linux

package mpris

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/playback"
)

// Options configure an Adapter.
type Options struct {
	Log  logrus.FieldLogger
	Quit func()
	Fs   afero.Fs
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ playback.Service, _ Options) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
