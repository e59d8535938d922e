package timetracker

import (
	"context"
	"errors"
	"fmt"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonUserNotFound      Reason = "user_not_found"
	ReasonIPMismatch        Reason = "ip_mismatch"
	ReasonUserAgentMismatch Reason = "user_agent_mismatch"
	ReasonAlreadyClockedIn  Reason = "already_clocked_in"
	ReasonNoActiveSession   Reason = "no_active_session"
)

const (
	msgUserNotFound      = "You are not authorized to perform this action. Contact Admin to update your account."
	msgIPMismatch        = `Your IP address: "%s" is not authorized to perform this action. Contact Admin to update your account.`
	msgUserAgentMismatch = `Your user agent: "%s" is not authorized to perform this action. Contact Admin to update your account.`
	msgAlreadyClockedIn  = "You already have an active time tracking session"
	msgNoActiveSession   = "You do not have an active time tracking session"
)

// Result is the outcome of a validation. Reason and Message are empty when Valid.
type Result struct {
	Valid   bool
	Reason  Reason
	Message string
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Reason: r.Reason, Message: r.Message}
}

type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateUser checks that the user exists and that the request comes from the
// device recorded on the account. IP and user agent are compared byte for byte.
func (u *TimeTrackerUsecase) ValidateUser(ctx context.Context, userID uuid.UUID, ip, userAgent string) (Result, error) {
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, customerrors.ErrNotFound) {
		return invalid(ReasonUserNotFound, msgUserNotFound), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	if ip != user.IPAddress {
		return invalid(ReasonIPMismatch, fmt.Sprintf(msgIPMismatch, ip)), nil
	}
	if userAgent != user.UserAgent {
		return invalid(ReasonUserAgentMismatch, fmt.Sprintf(msgUserAgentMismatch, userAgent)), nil
	}
	return valid(), nil
}

func (u *TimeTrackerUsecase) ValidateClockIn(ctx context.Context, userID uuid.UUID, ip, userAgent string) (Result, error) {
	res, err := u.ValidateUser(ctx, userID, ip, userAgent)
	if err != nil || !res.Valid {
		return res, err
	}

	active, err := u.sessions.HasActive(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if active {
		return invalid(ReasonAlreadyClockedIn, msgAlreadyClockedIn), nil
	}
	return valid(), nil
}

func (u *TimeTrackerUsecase) ValidateClockOut(ctx context.Context, userID uuid.UUID, ip, userAgent string) (Result, error) {
	res, err := u.ValidateUser(ctx, userID, ip, userAgent)
	if err != nil || !res.Valid {
		return res, err
	}

	active, err := u.sessions.HasActive(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if !active {
		return invalid(ReasonNoActiveSession, msgNoActiveSession), nil
	}
	return valid(), nil
}
