package iam

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

const eventsRoleARN = "arn:aws:iam::aws:policy/service-role/AmazonEC2ContainerServiceEventsRole"

type mockIAMAPI struct {
	getPolicyFunc        func(ctx context.Context, params *awsiam.GetPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyOutput, error)
	getPolicyVersionFunc func(ctx context.Context, params *awsiam.GetPolicyVersionInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyVersionOutput, error)
}

func (m *mockIAMAPI) GetPolicy(ctx context.Context, params *awsiam.GetPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyOutput, error) {
	return m.getPolicyFunc(ctx, params, optFns...)
}

func (m *mockIAMAPI) GetPolicyVersion(ctx context.Context, params *awsiam.GetPolicyVersionInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyVersionOutput, error) {
	return m.getPolicyVersionFunc(ctx, params, optFns...)
}

func TestGetManagedPolicy(t *testing.T) {
	created := time.Date(2015, 5, 22, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2018, 11, 9, 0, 0, 0, 0, time.UTC)

	mock := &mockIAMAPI{
		getPolicyFunc: func(ctx context.Context, params *awsiam.GetPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyOutput, error) {
			if awssdk.ToString(params.PolicyArn) != eventsRoleARN {
				t.Errorf("PolicyArn = %s, want %s", awssdk.ToString(params.PolicyArn), eventsRoleARN)
			}
			return &awsiam.GetPolicyOutput{
				Policy: &iamtypes.Policy{
					PolicyName:       awssdk.String("AmazonEC2ContainerServiceEventsRole"),
					PolicyId:         awssdk.String("ANPAJ1234567890EXAMPLE"),
					Arn:              awssdk.String(eventsRoleARN),
					Path:             awssdk.String("/service-role/"),
					Description:      awssdk.String("Policy to enable CloudWatch Events to run ECS tasks"),
					DefaultVersionId: awssdk.String("v2"),
					AttachmentCount:  awssdk.Int32(1),
					IsAttachable:     true,
					CreateDate:       &created,
					UpdateDate:       &updated,
				},
			}, nil
		},
	}

	client := NewClient(mock)
	policy, err := client.GetManagedPolicy(context.Background(), eventsRoleARN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.Name != "AmazonEC2ContainerServiceEventsRole" {
		t.Errorf("Name = %s", policy.Name)
	}
	if policy.Path != "/service-role/" {
		t.Errorf("Path = %s, want /service-role/", policy.Path)
	}
	if policy.DefaultVersionID != "v2" {
		t.Errorf("DefaultVersionID = %s, want v2", policy.DefaultVersionID)
	}
	if policy.AttachmentCount != 1 {
		t.Errorf("AttachmentCount = %d, want 1", policy.AttachmentCount)
	}
	if !policy.IsAttachable {
		t.Error("IsAttachable = false, want true")
	}
	if !policy.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", policy.CreatedAt, created)
	}
}

func TestGetManagedPolicy_WrongPartition(t *testing.T) {
	mock := &mockIAMAPI{
		getPolicyFunc: func(ctx context.Context, params *awsiam.GetPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NoSuchEntity", Message: "Policy not found"}
		},
	}

	client := NewClient(mock)
	_, err := client.GetManagedPolicy(context.Background(), eventsRoleARN)
	var nfErr *apierr.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.Resource != eventsRoleARN {
		t.Errorf("Resource = %s, want %s", nfErr.Resource, eventsRoleARN)
	}
}

func TestGetPolicyDocument(t *testing.T) {
	mock := &mockIAMAPI{
		getPolicyVersionFunc: func(ctx context.Context, params *awsiam.GetPolicyVersionInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyVersionOutput, error) {
			if awssdk.ToString(params.VersionId) != "v2" {
				t.Errorf("VersionId = %s, want v2", awssdk.ToString(params.VersionId))
			}
			return &awsiam.GetPolicyVersionOutput{
				PolicyVersion: &iamtypes.PolicyVersion{
					Document: awssdk.String("%7B%22Version%22%3A%222012-10-17%22%7D"),
				},
			}, nil
		},
	}

	client := NewClient(mock)
	doc, err := client.GetPolicyDocument(context.Background(), eventsRoleARN, "v2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != `{"Version":"2012-10-17"}` {
		t.Errorf("document = %s, want decoded JSON", doc)
	}
}
