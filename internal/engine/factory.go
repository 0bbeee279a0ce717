package engine

import (
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reprise/internal/config"
)

// New builds the engine selected by cfg.
// The mpv backend requires the binary to be resolvable; beep needs nothing.
func New(cfg config.EngineConfig, log logrus.FieldLogger) (Interface, error) {
	switch cfg.Backend {
	case config.BackendBeep:
		return NewBeep(log), nil
	case config.BackendMPV, "":
		bin := cfg.MPVPath
		if bin == "" {
			bin = "mpv"
		}
		resolved, err := exec.LookPath(bin)
		if err != nil {
			return nil, fmt.Errorf("mpv backend: %w", err)
		}
		return NewMPV(resolved, log), nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Backend)
	}
}
