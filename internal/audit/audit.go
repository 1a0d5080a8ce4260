// Package audit is the Go port of ElectricEye's Lambda auditor. Every check
// evaluates one security control against the functions (or layers) of a
// region and yields one ASFF finding per resource, pass or fail.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/electriceye-tools/eectl/internal/aws/ec2"
	"github.com/electriceye-tools/eectl/internal/aws/lambda"
	"github.com/electriceye-tools/eectl/internal/findings"
)

// Env is the account context findings are attributed to. It comes from the
// preflight caller-identity lookup.
type Env struct {
	AccountID string
	Region    string
	Partition string
}

// FunctionAPI is the Lambda surface the checks consume.
type FunctionAPI interface {
	ListFunctions(ctx context.Context) ([]lambda.Function, error)
	GetFunctionPolicy(ctx context.Context, functionName string) (string, error)
	ListLayers(ctx context.Context) ([]lambda.Layer, error)
	GetLayerVersionPolicy(ctx context.Context, layerName string, version int64) (string, error)
}

// MetricsAPI supplies invocation counts for the unused-function check.
type MetricsAPI interface {
	InvocationSum(ctx context.Context, functionName string, start, end time.Time) (float64, error)
}

// SubnetAPI resolves subnets to availability zones for the multi-AZ check.
type SubnetAPI interface {
	ListSubnets(ctx context.Context, subnetIDs []string) ([]ec2.Subnet, error)
}

// Auditor runs the Lambda check suite.
type Auditor struct {
	Lambda  FunctionAPI
	Metrics MetricsAPI
	Subnets SubnetAPI

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Check is one registered control.
type Check struct {
	ID    string
	Title string
	run   func(ctx context.Context, a *Auditor, env Env, state *runState) ([]findings.Finding, error)
}

// runState caches resource enumeration across checks within one run, the way
// the original auditor shares its cache dict.
type runState struct {
	now       time.Time
	functions []lambda.Function
	layers    []lambda.Layer

	functionsLoaded bool
	layersLoaded    bool
}

func (s *runState) loadFunctions(ctx context.Context, api FunctionAPI) ([]lambda.Function, error) {
	if s.functionsLoaded {
		return s.functions, nil
	}
	functions, err := api.ListFunctions(ctx)
	if err != nil {
		return nil, err
	}
	s.functions = functions
	s.functionsLoaded = true
	return functions, nil
}

func (s *runState) loadLayers(ctx context.Context, api FunctionAPI) ([]lambda.Layer, error) {
	if s.layersLoaded {
		return s.layers, nil
	}
	layers, err := api.ListLayers(ctx)
	if err != nil {
		return nil, err
	}
	s.layers = layers
	s.layersLoaded = true
	return layers, nil
}

// Checks returns the full registry in execution order.
func Checks() []Check {
	return []Check{
		{ID: "Lambda.1", Title: titleUnusedFunction, run: checkUnusedFunctions},
		{ID: "Lambda.2", Title: titleActiveTracing, run: checkActiveTracing},
		{ID: "Lambda.3", Title: titleCodeSigning, run: checkCodeSigning},
		{ID: "Lambda.4", Title: titlePublicLayer, run: checkPublicLayers},
		{ID: "Lambda.5", Title: titlePublicFunction, run: checkPublicFunctions},
		{ID: "Lambda.6", Title: titleSupportedRuntimes, run: checkSupportedRuntimes},
		{ID: "Lambda.7", Title: titleVPCMultiAZ, run: checkVPCMultiAZ},
	}
}

// Run executes the selected checks (all of them when ids is empty) and
// returns the combined findings.
func (a *Auditor) Run(ctx context.Context, env Env, ids []string) ([]findings.Finding, error) {
	selected := map[string]bool{}
	for _, id := range ids {
		selected[id] = true
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	state := &runState{now: now().UTC()}

	var out []findings.Finding
	for _, check := range Checks() {
		if len(selected) > 0 && !selected[check.ID] {
			continue
		}
		log.Debugf("running check %s", check.ID)
		results, err := check.run(ctx, a, env, state)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", check.ID, err)
		}
		out = append(out, results...)
	}
	return out, nil
}
