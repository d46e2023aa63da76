package pipeline

// State is the stage a run has reached
type State int

const (
	StateInit State = iota
	StateRobotsLoaded
	StateExtracting
	StateDownloading
	StateSummarized
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRobotsLoaded:
		return "RobotsLoaded"
	case StateExtracting:
		return "Extracting"
	case StateDownloading:
		return "Downloading"
	case StateSummarized:
		return "Summarized"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
