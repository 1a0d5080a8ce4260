package sts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssts "github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
	"github.com/electriceye-tools/eectl/internal/utils"
)

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *awssts.GetCallerIdentityInput, optFns ...func(*awssts.Options)) (*awssts.GetCallerIdentityOutput, error)
}

type Client struct {
	api STSAPI
}

func NewClient(api STSAPI) *Client {
	return &Client{api: api}
}

// ResolveCallerIdentity returns the identity the current credentials resolve
// to. Invalid or absent credentials surface as apierr.AuthenticationError.
func (c *Client) ResolveCallerIdentity(ctx context.Context) (CallerIdentity, error) {
	out, err := c.api.GetCallerIdentity(ctx, &awssts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, apierr.Classify("GetCallerIdentity", "caller identity", err)
	}

	arn := aws.ToString(out.Arn)
	return CallerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       arn,
		UserID:    aws.ToString(out.UserId),
		Partition: utils.Partition(arn),
	}, nil
}
