package iam

import "time"

// ManagedPolicy is the resolved metadata of a provider-managed IAM policy.
type ManagedPolicy struct {
	Name             string
	PolicyID         string
	ARN              string
	Path             string
	Description      string
	DefaultVersionID string
	AttachmentCount  int
	IsAttachable     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
