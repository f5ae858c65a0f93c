package constants

import (
	"os"
	"strconv"
	"time"
)

func GetPiecePath() string {
	return os.Getenv("STAFFGRID_PIECE")
}

func GetOutDir() string {
	path := os.Getenv("STAFFGRID_OUT")
	if path != "" {
		return path
	}
	return "./out"
}

func GetAddr() string {
	addr := os.Getenv("STAFFGRID_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

// GetTempo falls back to DefaultTempo when the variable is unset or not a
// positive number.
func GetTempo() float64 {
	bpm, err := strconv.ParseFloat(os.Getenv("STAFFGRID_TEMPO"), 64)
	if err != nil || bpm <= 0 {
		return DefaultTempo
	}
	return bpm
}

const DefaultTempo = 100

const DefaultVelocity = 80

// Added to every re-arm so a zero-length entry cannot busy-loop.
const RearmEpsilon = 5 * time.Millisecond

// An aligned onset this close behind now is treated as on time.
const AlignTolerance = 15 * time.Millisecond

// Grid resolution used when comparing start times, in steps per beat.
const TicksPerBeat = 960

const BeatsPerBar = 4
