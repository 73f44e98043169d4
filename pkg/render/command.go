package render

// Command is a user action coming from a renderer's input handling.
type Command int

const (
	CmdNone Command = iota
	CmdToggle
	CmdStart
	CmdStop
	CmdNextMode
	CmdCamera
	CmdMusic
	CmdChooseMusic
	CmdQuit
)

var commandNames = map[Command]string{
	CmdNone:        "none",
	CmdToggle:      "toggle",
	CmdStart:       "start",
	CmdStop:        "stop",
	CmdNextMode:    "next-mode",
	CmdCamera:      "camera",
	CmdMusic:       "music",
	CmdChooseMusic: "choose-music",
	CmdQuit:        "quit",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "unknown"
}

// KeyCommand maps a typed character to a command. Both renderers share it.
func KeyCommand(r rune) Command {
	switch r {
	case ' ':
		return CmdToggle
	case 's', 'S':
		return CmdStart
	case 'x', 'X':
		return CmdStop
	case 'm', 'M':
		return CmdNextMode
	case 'c', 'C':
		return CmdCamera
	case 'b', 'B':
		return CmdMusic
	case 'o', 'O':
		return CmdChooseMusic
	case 'q', 'Q':
		return CmdQuit
	default:
		return CmdNone
	}
}

// KeyHelp is the one-line key legend shown by renderers.
const KeyHelp = "space: play/pause  m: mode  c: camera  b: music  o: music folder  q: quit"
