package iam

import (
	"context"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

type IAMAPI interface {
	GetPolicy(ctx context.Context, params *awsiam.GetPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyOutput, error)
	GetPolicyVersion(ctx context.Context, params *awsiam.GetPolicyVersionInput, optFns ...func(*awsiam.Options)) (*awsiam.GetPolicyVersionOutput, error)
}

type Client struct {
	api IAMAPI
}

func NewClient(api IAMAPI) *Client {
	return &Client{api: api}
}

// GetManagedPolicy resolves a managed policy by its canonical ARN. An ARN
// that does not exist in the target partition surfaces as
// apierr.NotFoundError.
func (c *Client) GetManagedPolicy(ctx context.Context, arn string) (ManagedPolicy, error) {
	out, err := c.api.GetPolicy(ctx, &awsiam.GetPolicyInput{
		PolicyArn: aws.String(arn),
	})
	if err != nil {
		return ManagedPolicy{}, apierr.Classify("GetPolicy", arn, err)
	}

	p := out.Policy
	var createdAt, updatedAt time.Time
	if p.CreateDate != nil {
		createdAt = *p.CreateDate
	}
	if p.UpdateDate != nil {
		updatedAt = *p.UpdateDate
	}

	var attachmentCount int
	if p.AttachmentCount != nil {
		attachmentCount = int(*p.AttachmentCount)
	}

	return ManagedPolicy{
		Name:             aws.ToString(p.PolicyName),
		PolicyID:         aws.ToString(p.PolicyId),
		ARN:              aws.ToString(p.Arn),
		Path:             aws.ToString(p.Path),
		Description:      aws.ToString(p.Description),
		DefaultVersionID: aws.ToString(p.DefaultVersionId),
		AttachmentCount:  attachmentCount,
		IsAttachable:     p.IsAttachable,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

// GetPolicyDocument fetches and URL-decodes the policy document JSON for the
// given version.
func (c *Client) GetPolicyDocument(ctx context.Context, arn, versionID string) (string, error) {
	out, err := c.api.GetPolicyVersion(ctx, &awsiam.GetPolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: aws.String(versionID),
	})
	if err != nil {
		return "", apierr.Classify("GetPolicyVersion", arn, err)
	}

	doc := aws.ToString(out.PolicyVersion.Document)
	if decoded, err := url.QueryUnescape(doc); err == nil {
		doc = decoded
	}
	return doc, nil
}
