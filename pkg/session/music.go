package session

import (
	"fmt"

	"github.com/teslashibe/go-lotus/pkg/audio"
)

// ToggleMusic fades music in or out and reports whether it is now on.
func (s *Session) ToggleMusic() (bool, error) {
	if s.music == nil {
		return false, ErrNoMusic
	}
	on, err := s.music.Toggle()
	if err != nil {
		return false, err
	}
	s.logger.Info("music", "on", on, "track", s.music.Track())
	s.do(s.publish)
	return on, nil
}

// ChooseMusic asks the user for a music folder and switches to it. A
// cancelled dialog changes nothing.
func (s *Session) ChooseMusic() error {
	if s.music == nil {
		return ErrNoMusic
	}
	dir, err := audio.ChooseDir()
	if err != nil || dir == "" {
		return err
	}
	lib, err := audio.Scan(dir)
	if err != nil {
		return fmt.Errorf("music folder: %w", err)
	}
	s.music.SetLibrary(lib)
	s.logger.Info("music folder", "dir", dir, "tracks", len(lib.Tracks))
	return nil
}
