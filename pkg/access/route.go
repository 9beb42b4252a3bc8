// Package access decides where an authenticated principal may go and what
// it may do. Routing and authorization are pure over an explicit session
// snapshot; nothing here reads ambient request state.
package access

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// State classifies a session into exactly one routing flow state.
type State string

const (
	StateNeedsLogin        State = "needs_login"
	StateNeedsVerification State = "needs_verification"
	StateNeedsOnboarding   State = "needs_onboarding"
	StateReady             State = "ready"
)

// DefaultHome is where a ready session lands when no return target was
// requested.
const DefaultHome = "/dashboard"

// Paths for the non-ready flow states.
const (
	loginPath      = "/login"
	verifyPath     = "/verify-email"
	onboardingPath = "/onboarding"
)

// Outcome is the result of routing a session. Exactly one State applies.
type Outcome struct {
	State State

	// ReturnTo is the sanitized target to resume after the flow completes.
	ReturnTo string

	// WorkspaceID is a best-guess workspace for the onboarding flow, when
	// the session already belongs to one.
	WorkspaceID *uuid.UUID

	// Destination is the landing path for a Ready session.
	Destination string
}

// Route classifies a session. The check order is deliberate and fixed:
// verification is enforced before onboarding completeness is even looked
// at, because an unverified identity's company context is not trustworthy.
func Route(s *domain.Session, returnTo string) Outcome {
	rt := SanitizeReturnTo(returnTo)

	if s == nil {
		return Outcome{State: StateNeedsLogin, ReturnTo: rt}
	}

	if !s.EmailVerified {
		return Outcome{State: StateNeedsVerification, ReturnTo: rt}
	}

	if s.CompanyID == nil || !s.CompanyOnboarded {
		var workspaceID *uuid.UUID
		if len(s.Workspaces) > 0 {
			id := s.Workspaces[0].WorkspaceID
			workspaceID = &id
		}
		return Outcome{State: StateNeedsOnboarding, ReturnTo: rt, WorkspaceID: workspaceID}
	}

	dest := rt
	if dest == "/" {
		dest = DefaultHome
	}
	return Outcome{State: StateReady, ReturnTo: rt, Destination: dest}
}

// RedirectPath renders the outcome as the path the client should load.
// Non-ready states carry the return target as a query parameter so the
// flow can resume where the user was headed.
func (o Outcome) RedirectPath() string {
	switch o.State {
	case StateReady:
		return o.Destination
	case StateNeedsLogin:
		return withReturnTo(loginPath, o.ReturnTo)
	case StateNeedsVerification:
		return withReturnTo(verifyPath, o.ReturnTo)
	case StateNeedsOnboarding:
		return withReturnTo(onboardingPath, o.ReturnTo)
	default:
		return "/"
	}
}

func withReturnTo(path, returnTo string) string {
	if returnTo == "" || returnTo == "/" {
		return path
	}
	q := url.Values{"return_to": {returnTo}}
	return path + "?" + q.Encode()
}
