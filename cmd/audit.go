package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/electriceye-tools/eectl/internal/audit"
	awsclient "github.com/electriceye-tools/eectl/internal/aws"
	"github.com/electriceye-tools/eectl/internal/config"
	"github.com/electriceye-tools/eectl/internal/findings"
	"github.com/electriceye-tools/eectl/internal/render"
)

func NewAuditCmd() *cobra.Command {
	var profile string
	var region string
	var checks []string
	var output string
	var dbPath string
	var noArchive bool
	var bucket string
	var toSecurityHub bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the Lambda security checks and emit ASFF findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			profile, region = cfg.Merge(profile, region)
			if bucket == "" {
				bucket = cfg.FindingsBucket
			}

			ctx := context.Background()
			client, err := awsclient.NewServiceClient(ctx, profile, region)
			if err != nil {
				return fmt.Errorf("initializing AWS client: %w", err)
			}

			identity, err := client.STS.ResolveCallerIdentity(ctx)
			if err != nil {
				return err
			}
			env := audit.Env{
				AccountID: identity.AccountID,
				Region:    client.Region,
				Partition: identity.Partition,
			}

			auditor := &audit.Auditor{
				Lambda:  client.Lambda,
				Metrics: client.CloudWatch,
				Subnets: client.EC2,
			}
			results, err := auditor.Run(ctx, env, checks)
			if err != nil {
				return err
			}
			log.Infof("produced %d findings", len(results))

			if !noArchive {
				store, err := findings.OpenStore(cfg.DBPath(dbPath))
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(ctx, results); err != nil {
					return err
				}
			}

			if bucket != "" {
				body, err := json.Marshal(results)
				if err != nil {
					return fmt.Errorf("encoding findings: %w", err)
				}
				key := fmt.Sprintf("electriceye-findings/%s/%s.json",
					env.AccountID, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
				if err := client.S3.PutJSON(ctx, bucket, key, body); err != nil {
					return err
				}
				log.Infof("uploaded findings to s3://%s/%s", bucket, key)
			}

			if toSecurityHub {
				result, err := client.SecurityHub.ImportFindings(ctx, results)
				if err != nil {
					return err
				}
				log.Infof("Security Hub import: %d succeeded, %d failed", result.Succeeded, result.Failed)
			}

			switch output {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "summary":
				fmt.Print(render.AuditSummary(results))
				return nil
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringSliceVar(&checks, "check", nil, "check IDs to run, e.g. Lambda.2 (default all)")
	cmd.Flags().StringVarP(&output, "output", "o", "summary", "output format: summary, json")
	cmd.Flags().StringVar(&dbPath, "db", "", "path of the local findings archive")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "skip writing findings to the local archive")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "upload findings JSON to this S3 bucket")
	cmd.Flags().BoolVar(&toSecurityHub, "securityhub", false, "import findings into AWS Security Hub")

	return cmd
}
