package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	awsclient "github.com/electriceye-tools/eectl/internal/aws"
	"github.com/electriceye-tools/eectl/internal/config"
	"github.com/electriceye-tools/eectl/internal/findings"
	"github.com/electriceye-tools/eectl/internal/pagerduty"
)

func NewForwardCmd() *cobra.Command {
	var profile string
	var region string
	var dbPath string
	var filePath string
	var routingKey string
	var keyParameter string
	var severity string

	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Forward archived failing findings to PagerDuty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			profile, region = cfg.Merge(profile, region)
			if keyParameter == "" {
				keyParameter = cfg.PagerDutyKeyParameter
			}

			ctx := context.Background()

			if routingKey == "" {
				if keyParameter == "" {
					return fmt.Errorf("either --routing-key or --key-parameter is required")
				}
				client, err := awsclient.NewServiceClient(ctx, profile, region)
				if err != nil {
					return fmt.Errorf("initializing AWS client: %w", err)
				}
				routingKey, err = client.SSM.GetParameter(ctx, keyParameter)
				if err != nil {
					return err
				}
			}

			var batch []findings.Finding
			if filePath != "" {
				data, err := os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("reading findings file: %w", err)
				}
				if err := json.Unmarshal(data, &batch); err != nil {
					return fmt.Errorf("decoding findings file: %w", err)
				}
				if severity != "" {
					filtered := batch[:0]
					for _, f := range batch {
						if f.Severity.Label == severity {
							filtered = append(filtered, f)
						}
					}
					batch = filtered
				}
			} else {
				store, err := findings.OpenStore(cfg.DBPath(dbPath))
				if err != nil {
					return err
				}
				defer store.Close()

				batch, err = store.List(ctx, findings.Filter{
					Severity:         severity,
					ComplianceStatus: "FAILED",
				})
				if err != nil {
					return err
				}
			}
			if len(batch) == 0 {
				log.Info("no failing findings to forward")
				return nil
			}

			notifier := &pagerduty.Notifier{RoutingKey: routingKey}
			sent, err := notifier.NotifyAll(ctx, batch)
			if err != nil {
				return fmt.Errorf("forwarding findings: %w", err)
			}
			fmt.Printf("forwarded %d findings to PagerDuty\n", sent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVar(&dbPath, "db", "", "path of the local findings archive")
	cmd.Flags().StringVar(&filePath, "file", "", "read findings from a JSON file instead of the archive")
	cmd.Flags().StringVar(&routingKey, "routing-key", "", "PagerDuty Events API v2 routing key")
	cmd.Flags().StringVar(&keyParameter, "key-parameter", "", "SSM parameter holding the routing key")
	cmd.Flags().StringVar(&severity, "severity", "", "only forward findings with this severity label")

	return cmd
}
