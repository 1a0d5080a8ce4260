package cloudwatch

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *awscw.GetMetricDataInput, optFns ...func(*awscw.Options)) (*awscw.GetMetricDataOutput, error)
}

type Client struct {
	api CloudWatchAPI
}

func NewClient(api CloudWatchAPI) *Client {
	return &Client{api: api}
}

// InvocationSum returns the total AWS/Lambda Invocations for a function over
// [start, end), summed in 5-minute periods.
func (c *Client) InvocationSum(ctx context.Context, functionName string, start, end time.Time) (float64, error) {
	out, err := c.api.GetMetricData(ctx, &awscw.GetMetricDataInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
		MetricDataQueries: []types.MetricDataQuery{
			{
				Id: aws.String("m1"),
				MetricStat: &types.MetricStat{
					Metric: &types.Metric{
						Namespace:  aws.String("AWS/Lambda"),
						MetricName: aws.String("Invocations"),
						Dimensions: []types.Dimension{
							{Name: aws.String("FunctionName"), Value: aws.String(functionName)},
						},
					},
					Period: aws.Int32(300),
					Stat:   aws.String("Sum"),
				},
			},
		},
	})
	if err != nil {
		return 0, apierr.Classify("GetMetricData", functionName, err)
	}

	var sum float64
	for _, result := range out.MetricDataResults {
		for _, v := range result.Values {
			sum += v
		}
	}
	return sum, nil
}
