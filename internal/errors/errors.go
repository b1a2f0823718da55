// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
)

var (
    ErrNotFound          = errors.New("not found")
    ErrNoDefaultConfig   = errors.New("no default email configuration found")
    ErrInvalidTransition = errors.New("invalid campaign state")
    ErrForbidden         = errors.New("forbidden")
    ErrConflict          = errors.New("conflict")
    ErrValidation        = errors.New("validation failed")
    ErrSendInProgress    = errors.New("campaign send already in progress")
)

// ErrCampaignNotFound is returned when a campaign id has no row.
type ErrCampaignNotFound struct {
    CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

func (e *ErrCampaignNotFound) Is(target error) bool { return target == ErrNotFound }

func NewCampaignNotFound(id string) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

type ErrConfigNotFound struct {
    ConfigID string
}

func (e *ErrConfigNotFound) Error() string {
    return fmt.Sprintf("email configuration with ID %s not found", e.ConfigID)
}

func (e *ErrConfigNotFound) Is(target error) bool { return target == ErrNotFound }

func NewConfigNotFound(id string) error {
    return &ErrConfigNotFound{ConfigID: id}
}

type ErrContactNotFound struct {
    ContactID string
}

func (e *ErrContactNotFound) Error() string {
    return fmt.Sprintf("contact with ID %s not found", e.ContactID)
}

func (e *ErrContactNotFound) Is(target error) bool { return target == ErrNotFound }

func NewContactNotFound(id string) error {
    return &ErrContactNotFound{ContactID: id}
}

type ErrUserNotFound struct {
    UserID string
}

func (e *ErrUserNotFound) Error() string {
    return fmt.Sprintf("user with ID %s not found", e.UserID)
}

func (e *ErrUserNotFound) Is(target error) bool { return target == ErrNotFound }

func NewUserNotFound(id string) error {
    return &ErrUserNotFound{UserID: id}
}

// ErrRecordNotFound covers the smaller record kinds: lists and templates.
type ErrRecordNotFound struct {
    Kind string
    ID   string
}

func (e *ErrRecordNotFound) Error() string {
    return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

func (e *ErrRecordNotFound) Is(target error) bool { return target == ErrNotFound }

func NewRecordNotFound(kind, id string) error {
    return &ErrRecordNotFound{Kind: kind, ID: id}
}

// ErrInvalidState reports an operation that the campaign's current status does not allow.
type ErrInvalidState struct {
    CampaignID string
    Status     string
    Op         string
}

func (e *ErrInvalidState) Error() string {
    return fmt.Sprintf("cannot %s campaign %s in status %s", e.Op, e.CampaignID, e.Status)
}

func (e *ErrInvalidState) Is(target error) bool { return target == ErrInvalidTransition }

func NewInvalidState(campaignID, status, op string) error {
    return &ErrInvalidState{CampaignID: campaignID, Status: status, Op: op}
}

// Validation wraps ErrValidation with a field-specific message.
func Validation(format string, args ...any) error {
    return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
