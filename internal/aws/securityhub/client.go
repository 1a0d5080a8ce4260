package securityhub

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssechub "github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/aws/aws-sdk-go-v2/service/securityhub/types"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
	"github.com/electriceye-tools/eectl/internal/constants"
	"github.com/electriceye-tools/eectl/internal/findings"
)

type SecurityHubAPI interface {
	BatchImportFindings(ctx context.Context, params *awssechub.BatchImportFindingsInput, optFns ...func(*awssechub.Options)) (*awssechub.BatchImportFindingsOutput, error)
}

type Client struct {
	api SecurityHubAPI
}

func NewClient(api SecurityHubAPI) *Client {
	return &Client{api: api}
}

// ImportResult aggregates counts across all BatchImportFindings calls.
type ImportResult struct {
	Succeeded int
	Failed    int
}

// ImportFindings submits findings in batches of the API limit.
func (c *Client) ImportFindings(ctx context.Context, batch []findings.Finding) (ImportResult, error) {
	var result ImportResult

	for start := 0; start < len(batch); start += constants.SecurityHubBatchSize {
		end := start + constants.SecurityHubBatchSize
		if end > len(batch) {
			end = len(batch)
		}

		converted := make([]types.AwsSecurityFinding, 0, end-start)
		for _, f := range batch[start:end] {
			converted = append(converted, toASFF(f))
		}

		out, err := c.api.BatchImportFindings(ctx, &awssechub.BatchImportFindingsInput{
			Findings: converted,
		})
		if err != nil {
			return result, apierr.Classify("BatchImportFindings", "findings batch", err)
		}
		result.Succeeded += int(aws.ToInt32(out.SuccessCount))
		result.Failed += int(aws.ToInt32(out.FailedCount))
	}

	return result, nil
}

func toASFF(f findings.Finding) types.AwsSecurityFinding {
	resources := make([]types.Resource, 0, len(f.Resources))
	for _, r := range f.Resources {
		resources = append(resources, types.Resource{
			Type:      aws.String(r.Type),
			Id:        aws.String(r.Id),
			Partition: types.Partition(r.Partition),
			Region:    aws.String(r.Region),
		})
	}

	return types.AwsSecurityFinding{
		SchemaVersion:   aws.String(f.SchemaVersion),
		Id:              aws.String(f.Id),
		ProductArn:      aws.String(f.ProductArn),
		GeneratorId:     aws.String(f.GeneratorId),
		AwsAccountId:    aws.String(f.AwsAccountId),
		Types:           f.Types,
		FirstObservedAt: aws.String(f.FirstObservedAt),
		CreatedAt:       aws.String(f.CreatedAt),
		UpdatedAt:       aws.String(f.UpdatedAt),
		Severity: &types.Severity{
			Label: types.SeverityLabel(f.Severity.Label),
		},
		Confidence:  aws.Int32(int32(f.Confidence)),
		Title:       aws.String(f.Title),
		Description: aws.String(f.Description),
		Remediation: &types.Remediation{
			Recommendation: &types.Recommendation{
				Text: aws.String(f.Remediation.Recommendation.Text),
				Url:  aws.String(f.Remediation.Recommendation.Url),
			},
		},
		ProductFields: f.ProductFields,
		Resources:     resources,
		Compliance: &types.Compliance{
			Status:              types.ComplianceStatus(f.Compliance.Status),
			RelatedRequirements: f.Compliance.RelatedRequirements,
		},
		Workflow: &types.Workflow{
			Status: types.WorkflowStatus(f.Workflow.Status),
		},
		RecordState: types.RecordState(f.RecordState),
	}
}
