package tui

type View int

const (
	ViewCatalog View = iota
	ViewDetail
)
