package runner

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// startStdinToggle reads single keypresses from an interactive stdin and
// toggles the returned pauser on p, Enter or Space. It is only used when hosts
// do not come from stdin. The cleanup func restores the terminal state. If
// stdin is not a terminal it returns a nil pauser and a no-op cleanup.
func startStdinToggle(stdin io.Reader, log zerolog.Logger) (pauser *scanner.Pauser, cleanup func()) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, func() {}
	}
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Warn().Err(err).Msg("could not enable raw terminal, pause disabled")
		return nil, func() {}
	}

	// MakeRaw disables OPOST which stops \n -> \r\n translation on output.
	fixOutputProcessing(fd)

	pauser = scanner.NewPauser()
	cleanup = func() {
		_ = term.Restore(fd, oldState)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := f.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			key := buf[0]
			if key == 0x03 { // Ctrl+C: restore and re-raise so the signal context fires.
				_ = term.Restore(fd, oldState)
				sendInterrupt()
				return
			}
			if !isToggleKey(key) {
				continue
			}
			if pauser.Toggle() {
				log.Warn().Msg("probing paused, press p to resume")
			} else {
				log.Warn().Dur("paused", pauser.PausedDuration()).Msg("probing resumed")
			}
		}
	}()

	return pauser, cleanup
}

func isToggleKey(b byte) bool {
	switch b {
	case 'p', 'P', '\r', '\n', ' ':
		return true
	}
	return false
}
