package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	awsclient "github.com/electriceye-tools/eectl/internal/aws"
	"github.com/electriceye-tools/eectl/internal/config"
	"github.com/electriceye-tools/eectl/internal/preflight"
	"github.com/electriceye-tools/eectl/internal/render"
)

func NewContextCmd() *cobra.Command {
	var profile string
	var region string
	var policyARN string
	var output string

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Resolve the deployment context (caller identity, AZs, events role policy)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			profile, region = cfg.Merge(profile, region)

			ctx := context.Background()
			client, err := awsclient.NewServiceClient(ctx, profile, region)
			if err != nil {
				return fmt.Errorf("initializing AWS client: %w", err)
			}

			resolver := &preflight.Resolver{
				Identity:  client.STS,
				Zones:     client.EC2,
				Policies:  client.IAM,
				Region:    client.Region,
				PolicyARN: cfg.PolicyARN(policyARN),
			}

			resolved, err := resolver.Resolve(ctx)
			if err != nil {
				return err
			}

			switch output {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resolved)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(resolved)
			case "table":
				fmt.Print(render.Context(resolved))
				return nil
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVar(&policyARN, "policy-arn", "", "managed policy ARN to resolve (defaults to the events role policy)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")

	return cmd
}
