package engine

import (
	"fmt"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// ResolveTargetRoot returns the root of the target package's window. The
// active window is checked first, then every interactive window. Failures
// to list interactive windows are ignored.
func (e *Engine) ResolveTargetRoot() (model.Node, error) {
	_, root, err := e.target()
	return root, err
}

// target returns the attached service together with the target root
// resolved through it.
func (e *Engine) target() (platform.Service, model.Node, error) {
	svc := e.service()
	if svc == nil {
		e.log.Add("Accessibility service not connected (enable it in Settings).")
		return nil, nil, ErrServiceNotConnected
	}
	root, err := e.resolveRoot(svc)
	if err != nil {
		return nil, nil, err
	}
	return svc, root, nil
}

func (e *Engine) resolveRoot(svc platform.Service) (model.Node, error) {
	for _, root := range candidateRoots(svc) {
		if root.PackageName() == e.cfg.TargetPackage {
			return root, nil
		}
	}
	last := svc.LastEventPackage()
	e.logf("Target window root not found. target=%s lastEventPackage='%s'", e.cfg.TargetPackage, last)
	return nil, fmt.Errorf("%w: %s (last event package %q)", ErrTargetNotFound, e.cfg.TargetPackage, last)
}

func candidateRoots(svc platform.Service) []model.Node {
	var roots []model.Node
	if r := svc.ActiveWindowRoot(); r != nil {
		roots = append(roots, r)
	}
	windows, err := svc.InteractiveWindowRoots()
	if err != nil {
		return roots
	}
	for _, r := range windows {
		if r != nil {
			roots = append(roots, r)
		}
	}
	return roots
}

// ActivePackage returns the best guess at the foreground package: the
// active window's package, else the first interactive window with a
// package, else the package of the last accessibility event.
func (e *Engine) ActivePackage() string {
	svc := e.service()
	if svc == nil {
		return ""
	}
	if r := svc.ActiveWindowRoot(); r != nil {
		if pkg := r.PackageName(); pkg != "" {
			return pkg
		}
	}
	if windows, err := svc.InteractiveWindowRoots(); err == nil {
		for _, r := range windows {
			if r == nil {
				continue
			}
			if pkg := r.PackageName(); pkg != "" {
				return pkg
			}
		}
	}
	return svc.LastEventPackage()
}

// TargetActive reports whether the target package is in the foreground.
func (e *Engine) TargetActive() bool {
	return e.ActivePackage() == e.cfg.TargetPackage
}
