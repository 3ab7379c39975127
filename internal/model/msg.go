package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// InfoMsg carries a transient status line for the root view.
type InfoMsg struct {
	Text string
}

// ItemsLoadedMsg is sent when the item catalog fetch for a discovery session completes.
type ItemsLoadedMsg struct {
	Session uint64
	Items   []Item
	Err     error
}

// PointsLoadedMsg is sent when a point query completes. Seq identifies the query
// within its session.
type PointsLoadedMsg struct {
	Session uint64
	Seq     int
	Points  []PointSummary
	Err     error
}

// LocationResolvedMsg is sent when a single-shot location acquisition completes.
type LocationResolvedMsg struct {
	Session    uint64
	Coordinate Coordinate
	Err        error
}

// PointSelectedMsg hands a selected marker off to the detail screen.
type PointSelectedMsg struct {
	ID int64
}

// DetailLoadedMsg is sent when a point detail fetch completes. Seq identifies the
// navigation event that issued the fetch.
type DetailLoadedMsg struct {
	Seq    int
	Detail PointDetail
	Err    error
}

// PointImageLoadedMsg carries the rendered photo of the current detail.
type PointImageLoadedMsg struct {
	Seq int
	Art string
	Err error
}

// RegionsLoadedMsg is sent when recent regions are loaded.
type RegionsLoadedMsg struct {
	Regions []RecentRegion
}

// RegionSubmittedMsg is sent when the region entry form is submitted.
type RegionSubmittedMsg struct {
	Region RegionQuery
}

// Screen represents different app screens.
type Screen int

const (
	ScreenRegion Screen = iota
	ScreenDiscovery
	ScreenDetail
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
