package model

import "github.com/jsphweid/staffgrid/pitch"

type PositionBody struct {
	Bar  int `json:"bar"`
	Note int `json:"note"`
}

type PositionsResponse struct {
	Playback  PositionBody `json:"playback"`
	Selection PositionBody `json:"selection"`
	Playing   bool         `json:"playing"`
}

type MatchRequestBody struct {
	Held []pitch.Pitch `json:"held"`
}

type MatchResponse struct {
	Matched   bool          `json:"matched"`
	Target    []pitch.Pitch `json:"target"`
	Selection PositionBody  `json:"selection"`
}

type ModeRequestBody struct {
	Mode string `json:"mode"`
}

type TempoRequestBody struct {
	BPM float64 `json:"bpm"`
}

type GridResponse struct {
	Bars       [][]Entry   `json:"bars"`
	Highlights []Highlight `json:"highlights"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
