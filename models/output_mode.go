package models

// OutputMode selects the shape of the written manifest.
type OutputMode int

const (
	// OutputModeFull writes the structured manifest object.
	OutputModeFull OutputMode = iota
	OutputModeNamesOnly // Flat list of qualified asset names
)

func (m OutputMode) String() string {
	switch m {
	case OutputModeNamesOnly:
		return "names-only"
	default:
		return "full"
	}
}

// ParseOutputMode is the inverse of String. Unknown values map to full.
func ParseOutputMode(s string) OutputMode {
	if s == "names-only" {
		return OutputModeNamesOnly
	}
	return OutputModeFull
}
