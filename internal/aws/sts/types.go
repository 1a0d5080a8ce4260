package sts

// CallerIdentity is the identity the active credentials resolve to.
type CallerIdentity struct {
	AccountID string
	ARN       string
	UserID    string
	Partition string
}
