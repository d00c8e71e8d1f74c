// FILE: lixenwraith/lconfig/limits.go
package lconfig

// Format limits for LCONFIG headers.
// These mirror the limits of the acquisition driver that writes the files.
const (
	DefaultMaxWordLength = 80  // Longest parameter or value word, in bytes
	GroundChannel        = 199 // Negative channel code for single-ended measurement
	MaxAIChannel         = 14  // Highest analog input channel number

	timestampMarker = "#:" // Data block line carrying the acquisition start time
)
