// Package guard holds the pure navigation-guard decisions for authenticated
// areas of the portal.
package guard

// Decision is the outcome of evaluating a guard.
type Decision int

const (
	// Wait means bootstrap is still in flight and no routing should happen yet.
	Wait Decision = iota
	Allow
	RedirectLogin
	RedirectDashboard
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

// AlreadyAppliedNotice accompanies the dashboard redirect when an account
// with an application on file opens the application form.
const AlreadyAppliedNotice = "You have already submitted an application."

// SessionInfo is the session state a guard decides on.
type SessionInfo struct {
	Bootstrapping  bool
	LoggedIn       bool
	HasApplication bool
	IsStaff        bool
}

// Protected admits only signed-in users.
func Protected(info SessionInfo) Decision {
	switch {
	case info.Bootstrapping:
		return Wait
	case !info.LoggedIn:
		return RedirectLogin
	}
	return Allow
}

// Application admits signed-in users without an existing application or
// tenancy; everyone else lands back on the dashboard.
func Application(info SessionInfo) Decision {
	if d := Protected(info); d != Allow {
		return d
	}
	if info.HasApplication {
		return RedirectDashboard
	}
	return Allow
}

// Staff admits signed-in staff accounts; signed-in non-staff go home.
func Staff(info SessionInfo) Decision {
	if d := Protected(info); d != Allow {
		return d
	}
	if !info.IsStaff {
		return RedirectHome
	}
	return Allow
}
