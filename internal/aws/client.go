package aws

import (
	"context"
	"fmt"

	awscwsdk "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsec2sdk "github.com/aws/aws-sdk-go-v2/service/ec2"
	awsiamsdk "github.com/aws/aws-sdk-go-v2/service/iam"
	awslambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	awss3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	awssechubsdk "github.com/aws/aws-sdk-go-v2/service/securityhub"
	awsssmsdk "github.com/aws/aws-sdk-go-v2/service/ssm"
	awsstssdk "github.com/aws/aws-sdk-go-v2/service/sts"

	awscw "github.com/electriceye-tools/eectl/internal/aws/cloudwatch"
	awsec2 "github.com/electriceye-tools/eectl/internal/aws/ec2"
	awsiam "github.com/electriceye-tools/eectl/internal/aws/iam"
	awslambda "github.com/electriceye-tools/eectl/internal/aws/lambda"
	awss3 "github.com/electriceye-tools/eectl/internal/aws/s3"
	awssechub "github.com/electriceye-tools/eectl/internal/aws/securityhub"
	awsssm "github.com/electriceye-tools/eectl/internal/aws/ssm"
	awssts "github.com/electriceye-tools/eectl/internal/aws/sts"
)

// ServiceClient bundles the per-service wrappers eectl uses.
type ServiceClient struct {
	STS         *awssts.Client
	EC2         *awsec2.Client
	IAM         *awsiam.Client
	Lambda      *awslambda.Client
	CloudWatch  *awscw.Client
	S3          *awss3.Client
	SecurityHub *awssechub.Client
	SSM         *awsssm.Client

	Region string
}

func NewServiceClient(ctx context.Context, profile, region string) (*ServiceClient, error) {
	cfg, err := LoadConfig(ctx, profile, region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &ServiceClient{
		STS:         awssts.NewClient(awsstssdk.NewFromConfig(cfg)),
		EC2:         awsec2.NewClient(awsec2sdk.NewFromConfig(cfg)),
		IAM:         awsiam.NewClient(awsiamsdk.NewFromConfig(cfg)),
		Lambda:      awslambda.NewClient(awslambdasdk.NewFromConfig(cfg)),
		CloudWatch:  awscw.NewClient(awscwsdk.NewFromConfig(cfg)),
		S3:          awss3.NewClient(awss3sdk.NewFromConfig(cfg)),
		SecurityHub: awssechub.NewClient(awssechubsdk.NewFromConfig(cfg)),
		SSM:         awsssm.NewClient(awsssmsdk.NewFromConfig(cfg)),
		Region:      cfg.Region,
	}, nil
}
