package ssm

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

type SSMAPI interface {
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

type Client struct {
	api SSMAPI
}

func NewClient(api SSMAPI) *Client {
	return &Client{api: api}
}

// GetParameter fetches a parameter value, decrypting SecureString values.
func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := c.api.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", apierr.Classify("GetParameter", name, err)
	}
	return aws.ToString(out.Parameter.Value), nil
}
