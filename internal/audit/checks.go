package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/electriceye-tools/eectl/internal/aws/lambda"
	"github.com/electriceye-tools/eectl/internal/constants"
	"github.com/electriceye-tools/eectl/internal/findings"
)

const (
	titleUnusedFunction    = "[Lambda.1] Lambda functions should be deleted after 30 days of no use"
	titleActiveTracing     = "[Lambda.2] Lambda functions should use active tracing with AWS X-Ray"
	titleCodeSigning       = "[Lambda.3] Lambda functions should use code signing from AWS Signer to ensure trusted code runs in a Function"
	titlePublicLayer       = "[Lambda.4] Lambda layers should not be publicly shared"
	titlePublicFunction    = "[Lambda.5] Lambda functions should not be publicly shared"
	titleSupportedRuntimes = "[Lambda.6] Lambda functions should use supported runtimes"
	titleVPCMultiAZ        = "[Lambda.7] Lambda functions in VPCs should use more than one Availability Zone"
)

// supportedRuntimes are the runtimes still receiving maintenance and security
// updates. Deprecated runtimes keep serving invocations, which is why the
// runtime check exists at all.
var supportedRuntimes = map[string]bool{
	"nodejs14.x":    true,
	"nodejs12.x":    true,
	"python3.9":     true,
	"python3.8":     true,
	"python3.7":     true,
	"python3.6":     true,
	"ruby2.7":       true,
	"java11":        true,
	"java8":         true,
	"java8.al2":     true,
	"go1.x":         true,
	"dotnet6":       true,
	"dotnetcore3.1": true,
	"provided.al2":  true,
	"provided":      true,
}

func functionResource(env Env, fn lambda.Function, details map[string]any) findings.Resource {
	if details == nil {
		details = map[string]any{"FunctionName": fn.Name}
	}
	return findings.Resource{
		Type:      "AwsLambdaFunction",
		Id:        fn.ARN,
		Partition: env.Partition,
		Region:    env.Region,
		Details:   map[string]any{"AwsLambdaFunction": details},
	}
}

// conclude applies the pass/fail halves every check shares. Passing findings
// are always informational and archived; failing ones carry the check's own
// severity and stay active.
func conclude(f findings.Finding, passed bool, failSeverity string, requirements []string) findings.Finding {
	f.Compliance.RelatedRequirements = requirements
	if passed {
		f.Severity = findings.Severity{Label: "INFORMATIONAL"}
		f.Compliance.Status = "PASSED"
		f.Workflow = findings.Workflow{Status: "RESOLVED"}
		f.RecordState = "ARCHIVED"
	} else {
		f.Severity = findings.Severity{Label: failSeverity}
		f.Compliance.Status = "FAILED"
		f.Workflow = findings.Workflow{Status: "NEW"}
		f.RecordState = "ACTIVE"
	}
	return f
}

var assetManagementRequirements = []string{
	"NIST CSF ID.AM-2",
	"NIST SP 800-53 CM-8",
	"NIST SP 800-53 PM-5",
	"AICPA TSC CC3.2",
	"AICPA TSC CC6.1",
	"ISO 27001:2013 A.8.1.1",
	"ISO 27001:2013 A.8.1.2",
	"ISO 27001:2013 A.12.5.1",
}

var anomalyDetectionRequirements = []string{
	"NIST CSF DE.AE-3",
	"NIST SP 800-53 AU-6",
	"NIST SP 800-53 CA-7",
	"NIST SP 800-53 IR-4",
	"NIST SP 800-53 IR-5",
	"NIST SP 800-53 IR-8",
	"NIST SP 800-53 SI-4",
	"AICPA TSC CC7.2",
	"ISO 27001:2013 A.12.4.1",
	"ISO 27001:2013 A.16.1.7",
}

var supplyChainRequirements = []string{
	"NIST CSF ID.SC-2",
	"NIST SP 800-53 RA-2",
	"NIST SP 800-53 RA-3",
	"NIST SP 800-53 PM-9",
	"NIST SP 800-53 SA-12",
	"NIST SP 800-53 SA-14",
	"NIST SP 800-53 SA-15",
	"AICPA TSC CC7.2",
	"ISO 27001:2013 A.15.2.1",
	"ISO 27001:2013 A.15.2.2",
}

var remoteAccessRequirements = []string{
	"NIST CSF PR.AC-3",
	"NIST SP 800-53 AC-1",
	"NIST SP 800-53 AC-17",
	"NIST SP 800-53 AC-19",
	"NIST SP 800-53 AC-20",
	"NIST SP 800-53 SC-15",
	"AICPA TSC CC6.6",
	"ISO 27001:2013 A.6.2.1",
	"ISO 27001:2013 A.6.2.2",
	"ISO 27001:2013 A.11.2.6",
	"ISO 27001:2013 A.13.1.1",
	"ISO 27001:2013 A.13.2.1",
}

var resilienceRequirements = []string{
	"NIST CSF ID.BE-5",
	"NIST CSF PR.PT-5",
	"NIST SP 800-53 CP-2",
	"NIST SP 800-53 CP-11",
	"NIST SP 800-53 SA-13",
	"NIST SP 800-53 SA14",
	"AICPA TSC CC3.1",
	"AICPA TSC A1.2",
	"ISO 27001:2013 A.11.1.4",
	"ISO 27001:2013 A.17.1.1",
	"ISO 27001:2013 A.17.1.2",
	"ISO 27001:2013 A.17.2.1",
}

func checkUnusedFunctions(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	window := time.Duration(constants.UnusedFunctionWindowDays) * 24 * time.Hour
	start := state.now.Add(-window)

	var out []findings.Finding
	for _, fn := range functions {
		invocations, err := a.Metrics.InvocationSum(ctx, fn.Name, start, state.now)
		if err != nil {
			return nil, err
		}
		recentlyModified := state.now.Sub(fn.LastModified) < window
		passed := invocations > 0 || recentlyModified

		f := findings.New(fn.ARN+"/lambda-function-unused-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Title = titleUnusedFunction
		if passed {
			f.Description = fmt.Sprintf("Lambda function %s has seen activity within the last 30 days.", fn.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s has not been used within the last 30 days. Functions should be deleted if they are not used to avoid any potential malicious modifications and to lessen the consumption of default Lambda quotas such as stored code and number of functions.", fn.Name)
		}
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "For more information on best practices for lambda functions refer to the Best Practices for Working with AWS Lambda Functions section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/best-practices.html#function-configuration",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, nil)}
		out = append(out, conclude(f, passed, "LOW", assetManagementRequirements))
	}
	return out, nil
}

func checkActiveTracing(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, fn := range functions {
		passed := fn.TracingMode == "Active"

		f := findings.New(fn.ARN+"/lambda-active-tracing-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Title = titleActiveTracing
		if passed {
			f.Description = fmt.Sprintf("Lambda function %s has Active Tracing enabled.", fn.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s does not have Active Tracing enabled. Because X-Ray gives you an end-to-end view of an entire request, you can analyze latencies in your Functions and their backend services. You can use an X-Ray service map to view the latency of an entire request and that of the downstream services that are integrated with X-Ray. Refer to the remediation instructions if this configuration is not intended.", fn.Name)
		}
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "To configure your Lambda functions send trace data to X-Ray refer to the Using AWS Lambda with AWS X-Ray section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/services-xray.html",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, map[string]any{
			"FunctionName":  fn.Name,
			"TracingConfig": map[string]any{"Mode": fn.TracingMode},
		})}
		out = append(out, conclude(f, passed, "LOW", anomalyDetectionRequirements))
	}
	return out, nil
}

func checkCodeSigning(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, fn := range functions {
		passed := fn.SigningJobARN != ""

		f := findings.New(fn.ARN+"/lambda-code-signing-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Title = titleCodeSigning
		if passed {
			f.Description = fmt.Sprintf("Lambda function %s has an AWS code signing job configured at %s.", fn.Name, fn.SigningJobARN)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s does not have an AWS code signing job configured. Code signing for AWS Lambda helps to ensure that only trusted code runs in your Lambda functions. When you enable code signing for a function, Lambda checks every code deployment and verifies that the code package is signed by a trusted source. Refer to the remediation instructions if this configuration is not intended.", fn.Name)
		}
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "To configure code signing for your Functions refer to the Configuring code signing for AWS Lambda section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/configuration-codesigning.html",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, nil)}
		out = append(out, conclude(f, passed, "MEDIUM", supplyChainRequirements))
	}
	return out, nil
}

func checkPublicLayers(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	layers, err := state.loadLayers(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, layer := range layers {
		doc, err := a.Lambda.GetLayerVersionPolicy(ctx, layer.Name, layer.LatestVersion)
		if err != nil {
			return nil, err
		}
		public := false
		if doc != "" {
			policy, err := parseResourcePolicy(doc)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", layer.Name, err)
			}
			public = policy.allowsPublicLayerAccess()
		}

		f := findings.New(layer.LatestVersionARN+"/public-lambda-layer-check", layer.LatestVersionARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Types = append(f.Types, "Effects/Data Exposure")
		f.Title = titlePublicLayer
		if public {
			f.Description = fmt.Sprintf("Lambda layer %s is publicly shared without specifying a conditional access policy. Inadvertently sharing Lambda layers can potentially expose business logic or sensitive details within the Layer depending on how it is configured and thus all Layer sharing should be carefully reviewed. Refer to the remediation instructions if this configuration is not intended.", layer.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda layer %s is not publicly shared.", layer.Name)
		}
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "For more information on sharing Lambda Layers and modifiying their permissions refer to the Configuring layer permissions section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/configuration-layers.html#configuration-layers-permissions",
		}}
		f.Resources = []findings.Resource{{
			Type:      "AwsLambdaLayerVersion",
			Id:        layer.LatestVersionARN,
			Partition: env.Partition,
			Region:    env.Region,
			Details: map[string]any{
				"AwsLambdaLayerVersion": map[string]any{
					"Version":            layer.LatestVersion,
					"CompatibleRuntimes": layer.CompatibleRuntimes,
					"CreatedDate":        findings.Timestamp(layer.CreatedAt),
				},
			},
		}}
		out = append(out, conclude(f, !public, "HIGH", remoteAccessRequirements))
	}
	return out, nil
}

func checkPublicFunctions(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, fn := range functions {
		doc, err := a.Lambda.GetFunctionPolicy(ctx, fn.Name)
		if err != nil {
			return nil, err
		}

		f := findings.New(fn.ARN+"/public-lambda-function-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Types = append(f.Types, "Effects/Data Exposure")
		f.Title = titlePublicFunction
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "For more information on Lambda function resource-based policies and modifiying their permissions refer to the Using resource-based policies for AWS Lambda section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/access-control-resource-based.html",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, nil)}

		if doc == "" {
			// Functions without an invocation policy cannot be invoked by
			// anyone but the owning account.
			f.Description = fmt.Sprintf("Lambda function %s is not allowed to be publicly invoked due to not having an invocation policy and is thus exempt from this check.", fn.Name)
			out = append(out, conclude(f, true, "MEDIUM", remoteAccessRequirements))
			continue
		}

		policy, err := parseResourcePolicy(doc)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		public := policy.allowsPublicInvoke()
		if public {
			f.Description = fmt.Sprintf("Lambda function %s is allowed to be publicly invoked. While public invocation still requires understanding the Lambda function's metadata and having valid AWS credentials, functions should never be allowed to be freely invoked and should instead have a calling service or an API Gateway. Refer to the remediation instructions if this configuration is not intended.", fn.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s is not allowed to be publicly invoked.", fn.Name)
		}
		out = append(out, conclude(f, !public, "MEDIUM", remoteAccessRequirements))
	}
	return out, nil
}

func checkSupportedRuntimes(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, fn := range functions {
		passed := supportedRuntimes[fn.Runtime]

		f := findings.New(fn.ARN+"/lambda-supported-runtimes-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Title = titleSupportedRuntimes
		if passed {
			f.Description = fmt.Sprintf("Lambda function %s is using a supported runtime version.", fn.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s is not using a supported runtime version. Lambda runtimes are built around a combination of operating system, programming language, and software libraries that are subject to maintenance and security updates. When a runtime component is no longer supported for security updates, Lambda deprecates the runtime. Even though you cannot create functions that use the deprecated runtime, the function is still available to process invocation events. Make sure that your Lambda functions are current and do not use out-of-date runtime environments. Refer to the remediation instructions if this configuration is not intended.", fn.Name)
		}
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "For more information on the supported runtimes that this control checks for the supported languages refer to the AWS Lambda runtimes section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/lambda-runtimes.html",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, nil)}
		out = append(out, conclude(f, passed, "MEDIUM", remoteAccessRequirements))
	}
	return out, nil
}

func checkVPCMultiAZ(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error) {
	functions, err := state.loadFunctions(ctx, a.Lambda)
	if err != nil {
		return nil, err
	}

	var out []findings.Finding
	for _, fn := range functions {
		f := findings.New(fn.ARN+"/lambda-vpc-subnet-ha-check", fn.ARN, env.AccountID, env.Partition, env.Region, state.now)
		f.Title = titleVPCMultiAZ
		f.Remediation = findings.Remediation{Recommendation: findings.Recommendation{
			Text: "For more information Lambda function networking and HA requirements refer to the VPC networking for Lambda section of the Amazon Lambda Developer Guide",
			Url:  "https://docs.aws.amazon.com/lambda/latest/dg/foundation-networking.html",
		}}
		f.Resources = []findings.Resource{functionResource(env, fn, nil)}

		if len(fn.SubnetIDs) == 0 {
			f.Description = fmt.Sprintf("Lambda function %s is not deployed to a VPC and is thus exempt from this check.", fn.Name)
			out = append(out, conclude(f, true, "MEDIUM", resilienceRequirements))
			continue
		}

		subnets, err := a.Subnets.ListSubnets(ctx, fn.SubnetIDs)
		if err != nil {
			return nil, err
		}
		zones := map[string]bool{}
		for _, subnet := range subnets {
			zones[subnet.AvailabilityZone] = true
		}

		multiAZ := len(zones) > 1
		if multiAZ {
			f.Description = fmt.Sprintf("Lambda function %s is deployed to at least two Availability Zones.", fn.Name)
		} else {
			f.Description = fmt.Sprintf("Lambda function %s is only deployed to a Single Availability Zone. Deploying resources across multiple Availability Zones is an AWS best practice to ensure high availability within your architecture. Availability is a core pillar in the confidentiality, integrity, and availability triad security model. All Lambda functions should have a multi-Availability Zone deployment to ensure that a single zone of failure does not cause a total disruption of operations. Refer to the remediation instructions if this configuration is not intended.", fn.Name)
		}
		out = append(out, conclude(f, multiAZ, "MEDIUM", resilienceRequirements))
	}
	return out, nil
}
