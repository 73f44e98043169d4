package audio

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
	"github.com/ncruces/zenity"
)

// Extensions lists the file types the player can decode.
var Extensions = []string{".mp3", ".wav", ".flac"}

// Library is the set of tracks found in a music folder.
type Library struct {
	Dir    string
	Tracks []string
}

// Scan lists the playable files directly inside dir.
func Scan(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan music dir: %w", err)
	}

	lib := &Library{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		lib.Tracks = append(lib.Tracks, filepath.Join(dir, e.Name()))
	}
	sort.Strings(lib.Tracks)

	if len(lib.Tracks) == 0 {
		return lib, fmt.Errorf("%w in %s", ErrNoTracks, dir)
	}
	return lib, nil
}

// Random picks a track uniformly.
func (l *Library) Random(rng *rand.Rand) (string, error) {
	if l == nil || len(l.Tracks) == 0 {
		return "", ErrNoTracks
	}
	return l.Tracks[rng.IntN(len(l.Tracks))], nil
}

// Supported reports whether the file extension has a decoder.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Open decodes the file at path. The returned streamer owns the file.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// ChooseDir asks the user for a music folder with a native dialog. It returns
// an empty path if the dialog was cancelled.
func ChooseDir() (string, error) {
	dir, err := zenity.SelectFile(
		zenity.Title("Choose Music Folder"),
		zenity.Directory(),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return dir, nil
}
