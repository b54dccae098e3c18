package platform

import "github.com/mj1618/droid-a11y/internal/model"

// TreeSource exposes the host's live accessibility windows.
type TreeSource interface {
	// ActiveWindowRoot returns the root of the currently active window, or
	// nil when the host has none to offer yet.
	ActiveWindowRoot() model.Node

	// InteractiveWindowRoots returns the roots of every interactive window
	// the host knows about. Hosts may fail this query; callers treat it as
	// best-effort.
	InteractiveWindowRoots() ([]model.Node, error)

	// LastEventPackage returns the owning package of the most recent
	// accessibility event, or "" if none was observed.
	LastEventPackage() string
}

// GestureDispatcher schedules synthetic pointer gestures.
type GestureDispatcher interface {
	// DispatchGesture schedules g and reports whether it was accepted. When
	// accepted, done is called exactly once from any goroutine with true on
	// completion or false on cancellation. Hosts may never call done if the
	// gesture is lost; callers must time out on their own.
	DispatchGesture(g Gesture, done func(completed bool)) bool
}

// Display reports the device screen geometry.
type Display interface {
	ScreenSize() Size
}

// Service is the attached host capability the engine works against.
type Service interface {
	TreeSource
	GestureDispatcher
	Display
}

// Launcher starts applications by package name.
type Launcher interface {
	LaunchApp(pkg string) error
}

// Screenshotter captures the current screen as PNG bytes.
type Screenshotter interface {
	CaptureScreen() ([]byte, error)
}
