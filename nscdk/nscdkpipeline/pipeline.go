// Package nscdkpipeline provides the delivery pipeline construct: a CDK
// pipeline that deploys the application through the waves and stages of a
// validated nscdktopology.Topology.
//
// The construct is generic over what a stage contains. Callers supply a
// StageFactory that builds one deployable stage from its StageSpec; the
// pipeline takes care of wave ordering, manual approval gates, threading
// database handles from primaries to their replicas, and wiring access
// logging onto every bucket the pipeline creates for itself.
package nscdkpipeline

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipeline"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/pipelines"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/northslopehq/nsapp/nscdk/nscdklogbucket"
	"github.com/northslopehq/nsapp/nscdk/nscdktopology"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

// DeployedStage is one deployable copy of the application, produced by a
// StageFactory. It exposes the database handle downstream replica stages
// are built from.
type DeployedStage interface {
	// Stage returns the CDK stage added to the pipeline.
	Stage() awscdk.Stage
	// DatabaseInstance returns the stage's database handle. Replica stages
	// in later waves receive it as their replication source.
	DatabaseInstance() awsrds.IDatabaseInstance
}

// StageFactory builds a deployable stage from its spec. For replica stages,
// replicaSource is the database instance of the stage named by
// spec.ReplicatesFrom; it is nil for stages that own their database.
type StageFactory func(scope constructs.Construct, spec nscdktopology.StageSpec, replicaSource awsrds.IDatabaseInstance) DeployedStage

// Pipeline provides access to the finalized delivery pipeline.
type Pipeline interface {
	// Pipeline returns the underlying CodePipeline.
	Pipeline() awscodepipeline.Pipeline
	// AccessLogBucket returns the shared bucket receiving server access logs
	// from the pipeline's artifact and replication buckets.
	AccessLogBucket() awss3.IBucket
}

// Props configures the pipeline construct.
type Props struct {
	// Topology is the validated deployment graph to render. Required.
	Topology nscdktopology.Topology
	// NewStage builds each deployable stage. Required.
	NewStage StageFactory
}

type pipeline struct {
	cp        awscodepipeline.Pipeline
	logBucket awss3.IBucket
}

// New renders the topology into a CDK pipeline on the given stack.
//
// Waves are added in declaration order. A wave that requires approval gets a
// manual approval step as a pre-condition, so none of its stages deploy until
// a human approves; the pipeline waits indefinitely. Stage database handles
// are recorded as stages are constructed, so replica stages in later waves
// receive the instance created by their primary.
//
// After all waves are declared the pipeline is finalized (BuildPipeline),
// which materializes the artifact bucket and any cross-region replication
// buckets. Only then can access logging be attached to them; the wiring must
// stay strictly after finalization.
func New(stack awscdk.Stack, props Props) Pipeline {
	topo := props.Topology
	if err := topo.Validate(); err != nil {
		panic(err)
	}

	con := &pipeline{}

	source := pipelines.CodePipelineSource_GitHub(
		jsii.String(topo.Source.RepoSlug()),
		jsii.String(topo.Source.Branch),
		nil,
	)

	synth := pipelines.NewShellStep(jsii.String("Synth"), &pipelines.ShellStepProps{
		Input:    source,
		Commands: jsii.Strings(nscdktopology.SynthCommands()...),
	})

	cdkPipeline := pipelines.NewCodePipeline(stack, jsii.String("Pipeline"), &pipelines.CodePipelineProps{
		PipelineName:     jsii.String(nscdkutil.ResourceName(stack, "delivery", nscdkutil.CasingKebab)),
		Synth:            synth,
		CrossAccountKeys: jsii.Bool(true),
	})

	handles := map[string]awsrds.IDatabaseInstance{}

	for _, waveSpec := range topo.Waves {
		var opts *pipelines.WaveOptions
		if waveSpec.RequiresApproval {
			opts = &pipelines.WaveOptions{
				Pre: &[]pipelines.Step{
					pipelines.NewManualApprovalStep(jsii.String("Approve-"+waveSpec.Name),
						&pipelines.ManualApprovalStepProps{
							Comment: jsii.String("Approve deployment of wave " + waveSpec.Name),
						}),
				},
			}
		}
		wave := cdkPipeline.AddWave(jsii.String(waveSpec.Name), opts)

		for _, stageSpec := range waveSpec.Stages {
			var replicaSource awsrds.IDatabaseInstance
			if stageSpec.ReplicatesFrom != "" {
				// Topology validation guarantees the primary was built in an
				// earlier wave.
				replicaSource = handles[stageSpec.ReplicatesFrom]
			}

			deployed := props.NewStage(stack, stageSpec, replicaSource)
			wave.AddStage(deployed.Stage(), nil)
			handles[stageSpec.Name] = deployed.DatabaseInstance()
		}
	}

	cdkPipeline.BuildPipeline()
	con.cp = cdkPipeline.Pipeline()

	con.logBucket = nscdklogbucket.New(stack, nscdklogbucket.Props{}).Bucket()
	wireAccessLogs(con.cp, con.logBucket)

	return con
}

// wireAccessLogs attaches server access logging to every bucket the pipeline
// created for itself: the artifact bucket and the replication bucket of each
// cross-region support stack. Buckets are located through the pipeline's
// typed API rather than by matching construct type names, so a renamed
// internal construct fails loudly instead of being silently skipped.
func wireAccessLogs(cp awscodepipeline.Pipeline, dest awss3.IBucket) {
	if err := nscdklogbucket.AttachAccessLogging(
		cp.ArtifactBucket(), dest, nscdklogbucket.LogObjectKeyPrefix); err != nil {
		panic(err)
	}

	support := cp.CrossRegionSupport()
	if support == nil {
		return
	}
	for _, s := range *support {
		if s == nil || s.ReplicationBucket == nil {
			continue
		}
		if err := nscdklogbucket.AttachAccessLogging(
			s.ReplicationBucket, dest, nscdklogbucket.LogObjectKeyPrefix); err != nil {
			panic(err)
		}
	}
}

func (p *pipeline) Pipeline() awscodepipeline.Pipeline {
	return p.cp
}

func (p *pipeline) AccessLogBucket() awss3.IBucket {
	return p.logBucket
}
