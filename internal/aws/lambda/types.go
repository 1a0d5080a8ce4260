package lambda

import "time"

// Function holds the subset of function configuration the auditor evaluates.
type Function struct {
	Name          string
	ARN           string
	Runtime       string
	TracingMode   string // "Active" or "PassThrough"
	SigningJobARN string
	SubnetIDs     []string
	LastModified  time.Time
}

// Layer describes a layer and its latest matching version.
type Layer struct {
	Name               string
	ARN                string
	LatestVersionARN   string
	LatestVersion      int64
	CompatibleRuntimes []string
	CreatedAt          time.Time
}
