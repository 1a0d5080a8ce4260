package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

type EC2API interface {
	DescribeAvailabilityZones(ctx context.Context, params *awsec2.DescribeAvailabilityZonesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeAvailabilityZonesOutput, error)
	DescribeSubnets(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error)
}

type Client struct {
	api EC2API
}

func NewClient(api EC2API) *Client {
	return &Client{api: api}
}

// ListAvailabilityZones returns the zones of the configured region that are
// currently in the "available" state. A region with no available zones
// yields an empty slice, not an error.
func (c *Client) ListAvailabilityZones(ctx context.Context) ([]AvailabilityZone, error) {
	out, err := c.api.DescribeAvailabilityZones(ctx, &awsec2.DescribeAvailabilityZonesInput{
		Filters: []types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return nil, apierr.Classify("DescribeAvailabilityZones", "availability zones", err)
	}

	zones := make([]AvailabilityZone, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		zones = append(zones, AvailabilityZone{
			Name:     aws.ToString(az.ZoneName),
			ZoneID:   aws.ToString(az.ZoneId),
			ZoneType: aws.ToString(az.ZoneType),
			Region:   aws.ToString(az.RegionName),
			State:    string(az.State),
		})
	}
	return zones, nil
}

// ListSubnets resolves subnet IDs to their metadata, primarily the hosting
// availability zone. Used to judge multi-AZ placement of VPC Lambdas.
func (c *Client) ListSubnets(ctx context.Context, subnetIDs []string) ([]Subnet, error) {
	if len(subnetIDs) == 0 {
		return nil, nil
	}

	var subnets []Subnet
	var nextToken *string

	for {
		out, err := c.api.DescribeSubnets(ctx, &awsec2.DescribeSubnetsInput{
			SubnetIds: subnetIDs,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, apierr.Classify("DescribeSubnets", "subnets", err)
		}

		for _, s := range out.Subnets {
			subnets = append(subnets, Subnet{
				SubnetID:         aws.ToString(s.SubnetId),
				VPCID:            aws.ToString(s.VpcId),
				AvailabilityZone: aws.ToString(s.AvailabilityZone),
				CIDR:             aws.ToString(s.CidrBlock),
			})
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return subnets, nil
}
