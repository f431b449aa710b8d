package tracker

import "yabaitray/pkg/yabai"

// LayoutSource reports and mutates the layout of the active space.
type LayoutSource interface {
	ActiveSpace() (yabai.Space, error)
	SetLayout(layout yabai.Layout) error
}

// TransitionRecorder persists observed layout transitions.
type TransitionRecorder interface {
	RecordTransition(from, to yabai.Layout, cause string) error
}
