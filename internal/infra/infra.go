// Package infra submits the project's backing infrastructure stack and
// mirrors its outputs into the parameter-store namespace other boxstrap
// commands read. Provisioning semantics stay with CloudFormation; this
// package only submits, waits, and records.
package infra

import (
	"context"
	_ "embed"
	"fmt"
	"io"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/overlay"
)

//go:embed template.yaml
var templateBody string

// Parameter paths mirrored under the project namespace.
func paramPath(project, sub string) string {
	return "/" + project + "/" + sub
}

// mirroredOutputs maps stack output keys to namespace sub-paths.
var mirroredOutputs = map[string]string{
	"StateBucketName": "state/bucket",
	"TrustAnchorArn":  "rolesanywhere/trust-anchor-arn",
	"ProfileArn":      "rolesanywhere/profile-arn",
	"RoleArn":         "rolesanywhere/role-arn",
}

// Deployer deploys the stack and keeps the parameter namespace in sync.
type Deployer struct {
	Stacks      awsx.StackService
	Params      awsx.ParameterStore
	ProjectName string
	Out         io.Writer
}

// StackName returns the CloudFormation stack name for a project.
func StackName(project string) string {
	return project + "-bootstrap"
}

// Deploy submits the template with the root CA body as the trust-anchor
// source, waits for the stack to settle, mirrors outputs into the
// parameter namespace, and seeds the overlay auth-key parameter with
// the placeholder if it does not exist yet.
func (d *Deployer) Deploy(ctx context.Context, rootCAPEM string) (awsx.StackInfo, error) {
	name := StackName(d.ProjectName)
	fmt.Fprintf(d.Out, "deploying stack %s\n", name)

	info, err := d.Stacks.Deploy(ctx, name, templateBody, map[string]string{
		"ProjectName":       d.ProjectName,
		"RootCACertificate": rootCAPEM,
	})
	if err != nil {
		return info, fmt.Errorf("deploy stack: %w", err)
	}
	fmt.Fprintf(d.Out, "stack %s: %s\n", name, info.Status)

	if err := d.mirrorOutputs(ctx, info); err != nil {
		return info, err
	}
	if err := d.seedAuthKey(ctx); err != nil {
		return info, err
	}
	return info, nil
}

// Status describes the stack without mutating anything.
func (d *Deployer) Status(ctx context.Context) (awsx.StackInfo, error) {
	return d.Stacks.Describe(ctx, StackName(d.ProjectName))
}

func (d *Deployer) mirrorOutputs(ctx context.Context, info awsx.StackInfo) error {
	for key, sub := range mirroredOutputs {
		value, ok := info.Outputs[key]
		if !ok || value == "" {
			fmt.Fprintf(d.Out, "WARN: stack output %s missing, not mirrored\n", key)
			continue
		}
		name := paramPath(d.ProjectName, sub)
		if err := d.Params.Put(ctx, name, value, false); err != nil {
			return fmt.Errorf("mirror %s: %w", name, err)
		}
		fmt.Fprintf(d.Out, "mirrored %s -> %s\n", key, name)
	}
	return nil
}

// seedAuthKey writes the placeholder only when no key exists, so a real
// key stored later is never clobbered by a re-deploy.
func (d *Deployer) seedAuthKey(ctx context.Context) error {
	name := overlay.AuthKeyParameter(d.ProjectName)
	_, found, err := d.Params.Get(ctx, name, false)
	if err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}
	if found {
		return nil
	}
	if err := d.Params.Put(ctx, name, overlay.PlaceholderKey, true); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	fmt.Fprintf(d.Out, "seeded %s with placeholder (mint a real key before connecting)\n", name)
	return nil
}
