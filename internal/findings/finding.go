// Package findings carries the ASFF (AWS Security Finding Format) subset
// ElectricEye emits, plus the local SQLite archive.
package findings

import (
	"fmt"
	"time"

	"github.com/electriceye-tools/eectl/internal/constants"
)

type Severity struct {
	Label string `json:"Label"`
}

type Recommendation struct {
	Text string `json:"Text"`
	Url  string `json:"Url"`
}

type Remediation struct {
	Recommendation Recommendation `json:"Recommendation"`
}

type Resource struct {
	Type      string         `json:"Type"`
	Id        string         `json:"Id"`
	Partition string         `json:"Partition"`
	Region    string         `json:"Region"`
	Details   map[string]any `json:"Details,omitempty"`
}

type Compliance struct {
	Status              string   `json:"Status"`
	RelatedRequirements []string `json:"RelatedRequirements,omitempty"`
}

type Workflow struct {
	Status string `json:"Status"`
}

// Finding is one check result in ASFF shape.
type Finding struct {
	SchemaVersion   string            `json:"SchemaVersion"`
	Id              string            `json:"Id"`
	ProductArn      string            `json:"ProductArn"`
	GeneratorId     string            `json:"GeneratorId"`
	AwsAccountId    string            `json:"AwsAccountId"`
	Types           []string          `json:"Types"`
	FirstObservedAt string            `json:"FirstObservedAt"`
	CreatedAt       string            `json:"CreatedAt"`
	UpdatedAt       string            `json:"UpdatedAt"`
	Severity        Severity          `json:"Severity"`
	Confidence      int               `json:"Confidence"`
	Title           string            `json:"Title"`
	Description     string            `json:"Description"`
	Remediation     Remediation       `json:"Remediation"`
	ProductFields   map[string]string `json:"ProductFields"`
	Resources       []Resource        `json:"Resources"`
	Compliance      Compliance        `json:"Compliance"`
	Workflow        Workflow          `json:"Workflow"`
	RecordState     string            `json:"RecordState"`
}

// Failed reports whether the finding represents a failing check.
func (f Finding) Failed() bool {
	return f.Compliance.Status == "FAILED"
}

// ProductARN builds the Security Hub default product ARN for the account the
// finding belongs to.
func ProductARN(partition, region, accountID string) string {
	return fmt.Sprintf("arn:%s:securityhub:%s:%s:product/%s/default", partition, region, accountID, accountID)
}

// Timestamp renders a time in the ISO 8601 form Security Hub expects.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// PagerDutySeverity maps an ASFF severity label onto the PagerDuty Events
// API v2 severity scale.
func PagerDutySeverity(label string) string {
	switch label {
	case "CRITICAL":
		return "critical"
	case "HIGH":
		return "error"
	case "MEDIUM", "LOW":
		return "warning"
	default:
		return "info"
	}
}

// New fills the boilerplate every check shares: schema version, product
// metadata, timestamps, and the single resource entry.
func New(id, generatorID, accountID, partition, region string, now time.Time) Finding {
	ts := Timestamp(now)
	return Finding{
		SchemaVersion:   constants.ASFFSchemaVersion,
		Id:              id,
		ProductArn:      ProductARN(partition, region, accountID),
		GeneratorId:     generatorID,
		AwsAccountId:    accountID,
		Types:           []string{"Software and Configuration Checks/AWS Security Best Practices"},
		FirstObservedAt: ts,
		CreatedAt:       ts,
		UpdatedAt:       ts,
		Confidence:      99,
		ProductFields:   map[string]string{"Product Name": constants.ProductName},
	}
}
