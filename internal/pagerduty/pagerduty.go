// Package pagerduty pushes failed findings to the PagerDuty Events API v2.
// Each finding resource becomes one trigger event, deduplicated on the
// finding ID so repeated audit runs update the open incident instead of
// paging again.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/apex/log"

	"github.com/electriceye-tools/eectl/internal/findings"
)

const eventsURL = "https://events.pagerduty.com/v2/enqueue"

// Notifier sends events to one PagerDuty service via its routing key.
type Notifier struct {
	RoutingKey string

	// URL overrides the Events API endpoint; tests point it at a local
	// server. Empty means the production endpoint.
	URL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

type eventPayload struct {
	Summary       string            `json:"summary"`
	Source        string            `json:"source"`
	Severity      string            `json:"severity"`
	Component     string            `json:"component"`
	Class         string            `json:"class"`
	CustomDetails map[string]string `json:"custom_details"`
}

type event struct {
	Payload     eventPayload `json:"payload"`
	DedupKey    string       `json:"dedup_key"`
	EventAction string       `json:"event_action"`
}

func (n *Notifier) endpoint() string {
	if n.URL != "" {
		return n.URL
	}
	return eventsURL
}

func (n *Notifier) client() *http.Client {
	if n.HTTPClient != nil {
		return n.HTTPClient
	}
	return http.DefaultClient
}

// Notify triggers one event per resource of the finding.
func (n *Notifier) Notify(ctx context.Context, f findings.Finding) error {
	for _, resource := range f.Resources {
		ev := event{
			Payload: eventPayload{
				Summary:   fmt.Sprintf("AWS account %s has failed ElectricEye check %s", f.AwsAccountId, f.Title),
				Source:    "ElectricEye",
				Severity:  findings.PagerDutySeverity(f.Severity.Label),
				Component: resource.Id,
				Class:     "Security Hub Finding",
				CustomDetails: map[string]string{
					"finding_description":   f.Description,
					"aws_account_id":        f.AwsAccountId,
					"security_hub_severity": f.Severity.Label,
					"remediation_text":      f.Remediation.Recommendation.Text,
					"remediation_url":       f.Remediation.Recommendation.Url,
					"resource_type":         resource.Type,
				},
			},
			DedupKey:    f.Id,
			EventAction: "trigger",
		}
		if err := n.send(ctx, ev); err != nil {
			return fmt.Errorf("Notify: %w", err)
		}
	}
	return nil
}

// NotifyAll forwards every failed finding and skips the rest.
func (n *Notifier) NotifyAll(ctx context.Context, all []findings.Finding) (int, error) {
	sent := 0
	for _, f := range all {
		if !f.Failed() {
			continue
		}
		if err := n.Notify(ctx, f); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) send(ctx context.Context, ev event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Routing-Key", n.RoutingKey)

	resp, err := n.client().Do(req)
	if err != nil {
		return fmt.Errorf("posting event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("events API returned %d: %s", resp.StatusCode, msg)
	}

	log.Debugf("triggered PagerDuty event for %s", ev.DedupKey)
	return nil
}
