// Package client models the advertising clients that receive funding and
// share administrative expenses.
package client

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finops/backend/internal/domain/shared"
)

// MaxNameLength bounds client names
const MaxNameLength = 120

// Status is the lifecycle state of a client
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Client is an advertising client
type Client struct {
	shared.BaseAggregateRoot
	Name   string
	Email  string
	Notes  string
	Status Status
}

// NewClient creates an active client
func NewClient(name, email, notes string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, shared.NewDomainError("INVALID_NAME", fmt.Sprintf("Client name cannot exceed %d characters", MaxNameLength))
	}
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Client email is not valid")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Notes:             strings.TrimSpace(notes),
		Status:            StatusActive,
	}, nil
}

// IsActive reports whether the client can receive new distributions
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}

// Deactivate stops the client from receiving new distributions
func (c *Client) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Client is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate re-enables an inactive client
func (c *Client) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Client is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
