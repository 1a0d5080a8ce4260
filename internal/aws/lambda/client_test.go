package lambda

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
)

type mockLambdaAPI struct {
	listFunctionsFunc         func(ctx context.Context, params *awslambda.ListFunctionsInput, optFns ...func(*awslambda.Options)) (*awslambda.ListFunctionsOutput, error)
	getPolicyFunc             func(ctx context.Context, params *awslambda.GetPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetPolicyOutput, error)
	listLayersFunc            func(ctx context.Context, params *awslambda.ListLayersInput, optFns ...func(*awslambda.Options)) (*awslambda.ListLayersOutput, error)
	getLayerVersionPolicyFunc func(ctx context.Context, params *awslambda.GetLayerVersionPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetLayerVersionPolicyOutput, error)
}

func (m *mockLambdaAPI) ListFunctions(ctx context.Context, params *awslambda.ListFunctionsInput, optFns ...func(*awslambda.Options)) (*awslambda.ListFunctionsOutput, error) {
	return m.listFunctionsFunc(ctx, params, optFns...)
}

func (m *mockLambdaAPI) GetPolicy(ctx context.Context, params *awslambda.GetPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetPolicyOutput, error) {
	return m.getPolicyFunc(ctx, params, optFns...)
}

func (m *mockLambdaAPI) ListLayers(ctx context.Context, params *awslambda.ListLayersInput, optFns ...func(*awslambda.Options)) (*awslambda.ListLayersOutput, error) {
	return m.listLayersFunc(ctx, params, optFns...)
}

func (m *mockLambdaAPI) GetLayerVersionPolicy(ctx context.Context, params *awslambda.GetLayerVersionPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetLayerVersionPolicyOutput, error) {
	return m.getLayerVersionPolicyFunc(ctx, params, optFns...)
}

func TestListFunctions_Pagination(t *testing.T) {
	calls := 0
	mock := &mockLambdaAPI{
		listFunctionsFunc: func(ctx context.Context, params *awslambda.ListFunctionsInput, optFns ...func(*awslambda.Options)) (*awslambda.ListFunctionsOutput, error) {
			calls++
			switch calls {
			case 1:
				if params.Marker != nil {
					t.Errorf("first call Marker = %v, want nil", params.Marker)
				}
				return &awslambda.ListFunctionsOutput{
					Functions: []lambdatypes.FunctionConfiguration{
						{
							FunctionName: awssdk.String("electriceye-task"),
							FunctionArn:  awssdk.String("arn:aws:lambda:us-east-1:123456789012:function:electriceye-task"),
							Runtime:      lambdatypes.RuntimePython39,
							LastModified: awssdk.String("2026-01-15T10:30:00.000+0000"),
							TracingConfig: &lambdatypes.TracingConfigResponse{
								Mode: lambdatypes.TracingModeActive,
							},
						},
					},
					NextMarker: awssdk.String("page2"),
				}, nil
			default:
				if awssdk.ToString(params.Marker) != "page2" {
					t.Errorf("second call Marker = %v, want page2", params.Marker)
				}
				return &awslambda.ListFunctionsOutput{
					Functions: []lambdatypes.FunctionConfiguration{
						{
							FunctionName: awssdk.String("vpc-fn"),
							FunctionArn:  awssdk.String("arn:aws:lambda:us-east-1:123456789012:function:vpc-fn"),
							Runtime:      lambdatypes.Runtime("python2.7"),
							VpcConfig: &lambdatypes.VpcConfigResponse{
								SubnetIds: []string{"subnet-aaa", "subnet-bbb"},
							},
						},
					},
				}, nil
			}
		},
	}

	client := NewClient(mock)
	functions, err := client.ListFunctions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(functions))
	}
	if functions[0].TracingMode != "Active" {
		t.Errorf("TracingMode = %s, want Active", functions[0].TracingMode)
	}
	if functions[0].LastModified.IsZero() {
		t.Error("LastModified not parsed")
	}
	if functions[1].Runtime != "python2.7" {
		t.Errorf("Runtime = %s, want python2.7", functions[1].Runtime)
	}
	if len(functions[1].SubnetIDs) != 2 {
		t.Errorf("SubnetIDs = %v, want 2 ids", functions[1].SubnetIDs)
	}
}

func TestGetFunctionPolicy(t *testing.T) {
	policyJSON := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":"*","Action":"lambda:InvokeFunction"}]}`
	mock := &mockLambdaAPI{
		getPolicyFunc: func(ctx context.Context, params *awslambda.GetPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetPolicyOutput, error) {
			if awssdk.ToString(params.FunctionName) != "open-fn" {
				t.Errorf("FunctionName = %s, want open-fn", awssdk.ToString(params.FunctionName))
			}
			return &awslambda.GetPolicyOutput{Policy: awssdk.String(policyJSON)}, nil
		},
	}

	client := NewClient(mock)
	policy, err := client.GetFunctionPolicy(context.Background(), "open-fn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy != policyJSON {
		t.Errorf("policy = %s", policy)
	}
}

func TestGetFunctionPolicy_NoPolicy(t *testing.T) {
	mock := &mockLambdaAPI{
		getPolicyFunc: func(ctx context.Context, params *awslambda.GetPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetPolicyOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no policy"}
		},
	}

	client := NewClient(mock)
	policy, err := client.GetFunctionPolicy(context.Background(), "private-fn")
	if err != nil {
		t.Fatalf("a function without a policy must not be an error, got %v", err)
	}
	if policy != "" {
		t.Errorf("policy = %q, want empty", policy)
	}
}

func TestListLayers(t *testing.T) {
	mock := &mockLambdaAPI{
		listLayersFunc: func(ctx context.Context, params *awslambda.ListLayersInput, optFns ...func(*awslambda.Options)) (*awslambda.ListLayersOutput, error) {
			return &awslambda.ListLayersOutput{
				Layers: []lambdatypes.LayersListItem{
					{
						LayerName: awssdk.String("shared-deps"),
						LayerArn:  awssdk.String("arn:aws:lambda:us-east-1:123456789012:layer:shared-deps"),
						LatestMatchingVersion: &lambdatypes.LayerVersionsListItem{
							LayerVersionArn:    awssdk.String("arn:aws:lambda:us-east-1:123456789012:layer:shared-deps:4"),
							Version:            4,
							CompatibleRuntimes: []lambdatypes.Runtime{lambdatypes.RuntimePython39},
							CreatedDate:        awssdk.String("2026-02-01T08:00:00Z"),
						},
					},
				},
			}, nil
		},
	}

	client := NewClient(mock)
	layers, err := client.ListLayers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	if layers[0].LatestVersion != 4 {
		t.Errorf("LatestVersion = %d, want 4", layers[0].LatestVersion)
	}
	if layers[0].CompatibleRuntimes[0] != "python3.9" {
		t.Errorf("CompatibleRuntimes = %v", layers[0].CompatibleRuntimes)
	}
	if layers[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
}

func TestGetLayerVersionPolicy_NoPolicy(t *testing.T) {
	mock := &mockLambdaAPI{
		getLayerVersionPolicyFunc: func(ctx context.Context, params *awslambda.GetLayerVersionPolicyInput, optFns ...func(*awslambda.Options)) (*awslambda.GetLayerVersionPolicyOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no policy"}
		},
	}

	client := NewClient(mock)
	policy, err := client.GetLayerVersionPolicy(context.Background(), "shared-deps", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy != "" {
		t.Errorf("policy = %q, want empty", policy)
	}
}
