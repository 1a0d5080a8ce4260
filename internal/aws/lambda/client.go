package lambda

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

// lastModifiedLayout is the timestamp format Lambda uses for
// Configuration.LastModified.
const lastModifiedLayout = "2006-01-02T15:04:05.000-0700"

type LambdaAPI interface {
	ListFunctions(ctx context.Context, params *awslambda.ListFunctionsInput, optFns ...func(*awslambda.Options)) (*awslambda.ListFunctionsOutput, error)
	GetPolicy(ctx context.Context, params *awslambda.GetPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetPolicyOutput, error)
	ListLayers(ctx context.Context, params *awslambda.ListLayersInput, optFns ...func(*awslambda.Options)) (*awslambda.ListLayersOutput, error)
	GetLayerVersionPolicy(ctx context.Context, params *awslambda.GetLayerVersionPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetLayerVersionPolicyOutput, error)
}

type Client struct {
	api LambdaAPI
}

func NewClient(api LambdaAPI) *Client {
	return &Client{api: api}
}

// ListFunctions enumerates every function in the region.
func (c *Client) ListFunctions(ctx context.Context) ([]Function, error) {
	var functions []Function
	var marker *string

	for {
		out, err := c.api.ListFunctions(ctx, &awslambda.ListFunctionsInput{
			Marker: marker,
		})
		if err != nil {
			return nil, apierr.Classify("ListFunctions", "lambda functions", err)
		}

		for _, f := range out.Functions {
			var lastModified time.Time
			if f.LastModified != nil {
				if t, err := time.Parse(lastModifiedLayout, *f.LastModified); err == nil {
					lastModified = t
				}
			}

			tracingMode := ""
			if f.TracingConfig != nil {
				tracingMode = string(f.TracingConfig.Mode)
			}

			var subnetIDs []string
			if f.VpcConfig != nil {
				subnetIDs = f.VpcConfig.SubnetIds
			}

			functions = append(functions, Function{
				Name:          aws.ToString(f.FunctionName),
				ARN:           aws.ToString(f.FunctionArn),
				Runtime:       string(f.Runtime),
				TracingMode:   tracingMode,
				SigningJobARN: aws.ToString(f.SigningJobArn),
				SubnetIDs:     subnetIDs,
				LastModified:  lastModified,
			})
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	return functions, nil
}

// GetFunctionPolicy returns the resource-based policy JSON of a function.
// A function without a policy returns "" and no error.
func (c *Client) GetFunctionPolicy(ctx context.Context, functionName string) (string, error) {
	out, err := c.api.GetPolicy(ctx, &awslambda.GetPolicyInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		classified := apierr.Classify("GetPolicy", functionName, err)
		var nfErr *apierr.NotFoundError
		if errors.As(classified, &nfErr) {
			return "", nil
		}
		return "", classified
	}
	return aws.ToString(out.Policy), nil
}

// ListLayers enumerates every layer, keeping the latest matching version.
func (c *Client) ListLayers(ctx context.Context) ([]Layer, error) {
	var layers []Layer
	var marker *string

	for {
		out, err := c.api.ListLayers(ctx, &awslambda.ListLayersInput{
			Marker: marker,
		})
		if err != nil {
			return nil, apierr.Classify("ListLayers", "lambda layers", err)
		}

		for _, l := range out.Layers {
			layer := Layer{
				Name: aws.ToString(l.LayerName),
				ARN:  aws.ToString(l.LayerArn),
			}
			if v := l.LatestMatchingVersion; v != nil {
				layer.LatestVersionARN = aws.ToString(v.LayerVersionArn)
				layer.LatestVersion = v.Version
				for _, rt := range v.CompatibleRuntimes {
					layer.CompatibleRuntimes = append(layer.CompatibleRuntimes, string(rt))
				}
				if v.CreatedDate != nil {
					if t, err := time.Parse(time.RFC3339, *v.CreatedDate); err == nil {
						layer.CreatedAt = t
					}
				}
			}
			layers = append(layers, layer)
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	return layers, nil
}

// GetLayerVersionPolicy returns the resource-based policy JSON of a layer
// version. A layer version without a policy returns "" and no error.
func (c *Client) GetLayerVersionPolicy(ctx context.Context, layerName string, version int64) (string, error) {
	out, err := c.api.GetLayerVersionPolicy(ctx, &awslambda.GetLayerVersionPolicyInput{
		LayerName:     aws.String(layerName),
		VersionNumber: aws.Int64(version),
	})
	if err != nil {
		classified := apierr.Classify("GetLayerVersionPolicy", layerName, err)
		var nfErr *apierr.NotFoundError
		if errors.As(classified, &nfErr) {
			return "", nil
		}
		return "", classified
	}
	return aws.ToString(out.Policy), nil
}
