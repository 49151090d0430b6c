package nscdkutil

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"
)

// PipelineStackName returns the CloudFormation stack name for the delivery
// pipeline stack. This is the canonical function for generating it.
func PipelineStackName(qualifier, regionIdent string) string {
	base := strcase.ToLowerCamel(fmt.Sprintf("%s-%s", qualifier, regionIdent))
	return base + "Delivery"
}

// NewPipelineStack creates the stack that hosts the delivery pipeline.
//
// The stack lives in the primary region. The account comes from
// CDK_DEFAULT_ACCOUNT so the same app synthesizes against whichever account
// the deployer's credentials resolve to.
func NewPipelineStack(scope constructs.Construct, cfg *Config) awscdk.Stack {
	region := cfg.PrimaryRegion
	stackName := PipelineStackName(cfg.Qualifier, cfg.RegionIdent(region))

	return awscdk.NewStack(scope, jsii.String(stackName), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String(os.Getenv("CDK_DEFAULT_ACCOUNT")),
			Region:  jsii.String(region),
		},
		Description: jsii.Sprintf("%s delivery pipeline (region: %s)", cfg.Qualifier, region),
		Synthesizer: awscdk.NewDefaultStackSynthesizer(&awscdk.DefaultStackSynthesizerProps{
			Qualifier: jsii.String(cfg.Qualifier),
		}),
	})
}

// RegionIdent returns the short identifier for a region.
func (c *Config) RegionIdent(region string) string {
	return RegionIdentFor(region)
}

// IsPrimaryRegion checks if the given region is the primary region.
func (c *Config) IsPrimaryRegion(region string) bool {
	return region == c.PrimaryRegion
}

// IsPrimaryRegionStack checks if the given stack is in the primary region.
func (c *Config) IsPrimaryRegionStack(stack awscdk.Stack) bool {
	return *stack.Region() == c.PrimaryRegion
}
