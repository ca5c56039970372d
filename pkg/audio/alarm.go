package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoPlayer means none of the known command-line players is installed.
var ErrNoPlayer = errors.New("no audio player found")

type IAlarm interface {
	PlayLooping()
	Stop()
}

type playerCommand struct {
	name string
	args func(path string) []string
}

var playerCommands = []playerCommand{
	{name: "ffplay", args: func(p string) []string { return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", p} }},
	{name: "aplay", args: func(p string) []string { return []string{"-q", p} }},
	{name: "afplay", args: func(p string) []string { return []string{p} }},
	{name: "paplay", args: func(p string) []string { return []string{p} }},
}

const replayPause = 300 * time.Millisecond

type Player struct {
	log  *logrus.Logger
	play func(ctx context.Context) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Load checks that path exists and picks the first installed player for it.
func Load(log *logrus.Logger, path string) (*Player, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("alarm sound: %w", err)
	}

	for _, pc := range playerCommands {
		resolved, err := exec.LookPath(pc.name)
		if err != nil {
			continue
		}
		args := pc.args(path)
		log.WithFields(logrus.Fields{
			"player": resolved,
			"sound":  path,
		}).Info("Alarm sound loaded")

		return newPlayer(log, func(ctx context.Context) error {
			cmd := exec.CommandContext(ctx, resolved, args...)
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
			return cmd.Run()
		}), nil
	}

	return nil, ErrNoPlayer
}

func newPlayer(log *logrus.Logger, play func(ctx context.Context) error) *Player {
	return &Player{log: log, play: play}
}

// PlayLooping replays the clip until Stop. Calling it while already playing
// does nothing.
func (p *Player) PlayLooping() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		for {
			if err := p.play(ctx); err != nil && ctx.Err() == nil {
				p.log.WithField("error", err.Error()).Debug("Alarm playback ended with error")
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(replayPause):
			}
		}
	}()
}

// Stop silences the alarm and waits for the player process to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
