// Package preflight resolves the read-only deployment context an ElectricEye
// rollout is parametrized with: who is deploying, which zones can host the
// workload, and the canonical events-role policy. The three lookups are
// independent reads; nothing here creates, mutates, or retries anything.
package preflight

import (
	"context"
	"sync"

	"github.com/electriceye-tools/eectl/internal/aws/ec2"
	"github.com/electriceye-tools/eectl/internal/aws/iam"
	"github.com/electriceye-tools/eectl/internal/aws/sts"
)

// IdentityResolver resolves the caller identity.
type IdentityResolver interface {
	ResolveCallerIdentity(ctx context.Context) (sts.CallerIdentity, error)
}

// ZoneResolver enumerates available availability zones.
type ZoneResolver interface {
	ListAvailabilityZones(ctx context.Context) ([]ec2.AvailabilityZone, error)
}

// PolicyResolver resolves a managed policy by canonical ARN.
type PolicyResolver interface {
	GetManagedPolicy(ctx context.Context, arn string) (iam.ManagedPolicy, error)
}

// Context is the resolved deployment context.
type Context struct {
	Identity          sts.CallerIdentity     `json:"identity" yaml:"identity"`
	Region            string                 `json:"region" yaml:"region"`
	AvailabilityZones []ec2.AvailabilityZone `json:"availability_zones" yaml:"availability_zones"`
	EventsPolicy      iam.ManagedPolicy      `json:"events_policy" yaml:"events_policy"`
}

// Resolver runs the three lookups. PolicyARN is fixed at construction; the
// default is the canonical standard-partition ARN.
type Resolver struct {
	Identity  IdentityResolver
	Zones     ZoneResolver
	Policies  PolicyResolver
	Region    string
	PolicyARN string
}

// Resolve evaluates the three lookups concurrently. They have no ordering
// dependency on each other, so the result is identical to sequential
// evaluation; the first error wins and the partial context is discarded.
func (r *Resolver) Resolve(ctx context.Context) (Context, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		out      Context
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		identity, err := r.Identity.ResolveCallerIdentity(ctx)
		if err != nil {
			fail(err)
			return
		}
		out.Identity = identity
	}()

	go func() {
		defer wg.Done()
		zones, err := r.Zones.ListAvailabilityZones(ctx)
		if err != nil {
			fail(err)
			return
		}
		out.AvailabilityZones = zones
	}()

	go func() {
		defer wg.Done()
		policy, err := r.Policies.GetManagedPolicy(ctx, r.PolicyARN)
		if err != nil {
			fail(err)
			return
		}
		out.EventsPolicy = policy
	}()

	wg.Wait()

	if firstErr != nil {
		return Context{}, firstErr
	}
	out.Region = r.Region
	return out, nil
}
