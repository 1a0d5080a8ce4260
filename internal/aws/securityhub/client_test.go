package securityhub

import (
	"context"
	"fmt"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awssechub "github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electriceye-tools/eectl/internal/findings"
)

type mockSecurityHubAPI struct {
	batchImportFindingsFunc func(ctx context.Context, params *awssechub.BatchImportFindingsInput, optFns ...func(*awssechub.Options)) (*awssechub.BatchImportFindingsOutput, error)
}

func (m *mockSecurityHubAPI) BatchImportFindings(ctx context.Context, params *awssechub.BatchImportFindingsInput, optFns ...func(*awssechub.Options)) (*awssechub.BatchImportFindingsOutput, error) {
	return m.batchImportFindingsFunc(ctx, params, optFns...)
}

func sampleFinding(i int) findings.Finding {
	f := findings.New(
		fmt.Sprintf("arn:aws:lambda:us-east-1:123456789012:function:fn-%d/lambda-active-tracing-check", i),
		"gen", "123456789012", "aws", "us-east-1", time.Now())
	f.Title = "[Lambda.2] Lambda functions should use active tracing with AWS X-Ray"
	f.Severity = findings.Severity{Label: "LOW"}
	f.Compliance = findings.Compliance{Status: "FAILED"}
	f.Workflow = findings.Workflow{Status: "NEW"}
	f.RecordState = "ACTIVE"
	f.Resources = []findings.Resource{
		{Type: "AwsLambdaFunction", Id: "arn", Partition: "aws", Region: "us-east-1"},
	}
	return f
}

func TestImportFindings_Batches(t *testing.T) {
	var batchSizes []int
	mock := &mockSecurityHubAPI{
		batchImportFindingsFunc: func(ctx context.Context, params *awssechub.BatchImportFindingsInput, optFns ...func(*awssechub.Options)) (*awssechub.BatchImportFindingsOutput, error) {
			batchSizes = append(batchSizes, len(params.Findings))
			return &awssechub.BatchImportFindingsOutput{
				SuccessCount: awssdk.Int32(int32(len(params.Findings))),
				FailedCount:  awssdk.Int32(0),
			}, nil
		},
	}

	batch := make([]findings.Finding, 150)
	for i := range batch {
		batch[i] = sampleFinding(i)
	}

	client := NewClient(mock)
	result, err := client.ImportFindings(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 50}, batchSizes)
	assert.Equal(t, 150, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestImportFindings_MapsASFFFields(t *testing.T) {
	mock := &mockSecurityHubAPI{
		batchImportFindingsFunc: func(ctx context.Context, params *awssechub.BatchImportFindingsInput, optFns ...func(*awssechub.Options)) (*awssechub.BatchImportFindingsOutput, error) {
			require.Len(t, params.Findings, 1)
			f := params.Findings[0]
			assert.Equal(t, "2018-10-08", awssdk.ToString(f.SchemaVersion))
			assert.Equal(t, "123456789012", awssdk.ToString(f.AwsAccountId))
			assert.Equal(t, "LOW", string(f.Severity.Label))
			assert.Equal(t, "FAILED", string(f.Compliance.Status))
			assert.Equal(t, "NEW", string(f.Workflow.Status))
			assert.Equal(t, "ACTIVE", string(f.RecordState))
			require.Len(t, f.Resources, 1)
			assert.Equal(t, "AwsLambdaFunction", awssdk.ToString(f.Resources[0].Type))
			return &awssechub.BatchImportFindingsOutput{
				SuccessCount: awssdk.Int32(1),
				FailedCount:  awssdk.Int32(0),
			}, nil
		},
	}

	client := NewClient(mock)
	result, err := client.ImportFindings(context.Background(), []findings.Finding{sampleFinding(0)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
}
