// Package nscdktopology models the delivery pipeline's deployment graph as an
// immutable value, independent of any CDK types.
//
// The topology is produced by a pure function ([Build]) and validated before
// anything is instantiated, so ordering and replication invariants can be
// tested without synthesizing a single CloudFormation template. The
// nscdkpipeline construct renders a validated Topology into CDK pipeline
// waves and stages.
package nscdktopology

import (
	"github.com/cockroachdb/errors"
)

// Wave and stage names are fixed. They are part of the pipeline's public
// surface: operators approve waves by these names and runbooks reference them.
const (
	WaveDevAndQA    = "DEV-and-QA-Deployments"
	WavePrimaryDB   = "Primary-DB-Region-Deployments"
	WaveSecondaryDB = "Secondary-DB-Region-Deployments"

	StageDev        = "dev"
	StageQA         = "qa"
	StageStgPrimary = "stg-primary"
	StageStgBackup  = "stg-backup"
	StagePrdPrimary = "prd-primary"
	StagePrdBackup  = "prd-backup"
)

// Environment is an (account, region) pair a stage deploys into.
type Environment struct {
	Account string
	Region  string
}

// SourceSpec identifies the repository and branch the pipeline tracks.
type SourceSpec struct {
	Owner  string
	Repo   string
	Branch string
}

// RepoSlug returns the "owner/repository" reference used by the pipeline source.
func (s SourceSpec) RepoSlug() string {
	return s.Owner + "/" + s.Repo
}

// StageSpec describes one deployable copy of the application.
type StageSpec struct {
	Name string
	Env  Environment

	// ReplicatesFrom names the stage whose database this stage's database is
	// a read replica of. Empty for stages that own their database.
	ReplicatesFrom string

	// SecretReplicaRegions lists regions the database credentials secret is
	// replicated to. Only set on stages that own their database.
	SecretReplicaRegions []string
}

// OwnsDatabase reports whether this stage creates its own database instance
// rather than replicating another stage's.
func (s StageSpec) OwnsDatabase() bool {
	return s.ReplicatesFrom == ""
}

// WaveSpec is an ordered group of stages deployed together. Waves execute in
// declaration order; a wave with RequiresApproval set does not start until a
// human approves it.
type WaveSpec struct {
	Name             string
	RequiresApproval bool
	Stages           []StageSpec
}

// Topology is the full deployment graph: the source the pipeline tracks and
// the ordered sequence of waves. Values are never mutated after Build returns.
type Topology struct {
	Source SourceSpec
	Waves  []WaveSpec
}

// Params carries the external inputs the topology depends on.
type Params struct {
	Source SourceSpec

	DevAccount string
	StgAccount string
	PrdAccount string

	PrimaryRegion   string
	SecondaryRegion string
}

// Build returns the fixed deployment topology:
//
//  1. DEV-and-QA-Deployments: dev and qa, ungated, primary region.
//  2. Primary-DB-Region-Deployments: stg-primary and prd-primary, gated by
//     manual approval. These own the databases; their credentials secrets
//     replicate to the secondary region.
//  3. Secondary-DB-Region-Deployments: stg-backup and prd-backup in the
//     secondary region, each a read replica of its wave-2 counterpart.
//
// The returned topology is validated; Build fails rather than hand the
// pipeline a graph that violates ordering or replication invariants.
func Build(p Params) (Topology, error) {
	primary := func(account string) Environment {
		return Environment{Account: account, Region: p.PrimaryRegion}
	}
	secondary := func(account string) Environment {
		return Environment{Account: account, Region: p.SecondaryRegion}
	}

	topo := Topology{
		Source: p.Source,
		Waves: []WaveSpec{
			{
				Name: WaveDevAndQA,
				Stages: []StageSpec{
					{Name: StageDev, Env: primary(p.DevAccount)},
					{Name: StageQA, Env: primary(p.DevAccount)},
				},
			},
			{
				Name:             WavePrimaryDB,
				RequiresApproval: true,
				Stages: []StageSpec{
					{
						Name:                 StageStgPrimary,
						Env:                  primary(p.StgAccount),
						SecretReplicaRegions: []string{p.SecondaryRegion},
					},
					{
						Name:                 StagePrdPrimary,
						Env:                  primary(p.PrdAccount),
						SecretReplicaRegions: []string{p.SecondaryRegion},
					},
				},
			},
			{
				Name: WaveSecondaryDB,
				Stages: []StageSpec{
					{Name: StageStgBackup, Env: secondary(p.StgAccount), ReplicatesFrom: StageStgPrimary},
					{Name: StagePrdBackup, Env: secondary(p.PrdAccount), ReplicatesFrom: StagePrdPrimary},
				},
			},
		},
	}

	if err := topo.Validate(); err != nil {
		return Topology{}, err
	}
	return topo, nil
}

// Validate checks the structural invariants of the deployment graph:
//
//   - stage names are unique across all waves
//   - every ReplicatesFrom names a database-owning stage declared in an
//     earlier wave (the primary must exist before its replica deploys)
//   - secret replica regions are declared only on database-owning stages
//   - every stage has an account and region
func (t Topology) Validate() error {
	// seen holds stages from completed waves, inWave the wave being checked.
	seen := map[string]StageSpec{}
	inWave := map[string]StageSpec{}

	for wi, wave := range t.Waves {
		if wave.Name == "" {
			return errors.Newf("wave %d has no name", wi)
		}
		clear(inWave)

		for _, stage := range wave.Stages {
			if stage.Name == "" {
				return errors.Newf("wave %q contains a stage with no name", wave.Name)
			}
			if _, dup := seen[stage.Name]; dup {
				return errors.Newf("stage %q declared more than once", stage.Name)
			}
			if _, dup := inWave[stage.Name]; dup {
				return errors.Newf("stage %q declared more than once", stage.Name)
			}
			if stage.Env.Account == "" || stage.Env.Region == "" {
				return errors.Newf("stage %q has an incomplete environment (account=%q region=%q)",
					stage.Name, stage.Env.Account, stage.Env.Region)
			}

			if stage.ReplicatesFrom != "" {
				src, ok := seen[stage.ReplicatesFrom]
				if !ok {
					return errors.Newf(
						"stage %q replicates from %q, which is not declared in an earlier wave",
						stage.Name, stage.ReplicatesFrom)
				}
				if !src.OwnsDatabase() {
					return errors.Newf(
						"stage %q replicates from %q, which does not own a database",
						stage.Name, stage.ReplicatesFrom)
				}
				if len(stage.SecretReplicaRegions) > 0 {
					return errors.Newf(
						"stage %q is a replica but declares secret replica regions", stage.Name)
				}
			}

			inWave[stage.Name] = stage
		}

		// A wave's stages deploy in parallel, so a replica may not reference
		// a primary in its own wave.
		for name, stage := range inWave {
			seen[name] = stage
		}
	}

	return nil
}

// Stage returns the StageSpec with the given name, if declared.
func (t Topology) Stage(name string) (StageSpec, bool) {
	for _, wave := range t.Waves {
		for _, stage := range wave.Stages {
			if stage.Name == name {
				return stage, true
			}
		}
	}
	return StageSpec{}, false
}

// SynthCommands is the fixed build command sequence the pipeline's synth step
// runs: install dependencies, build, synthesize the deployment templates.
func SynthCommands() []string {
	return []string{
		"go mod download",
		"go build ./...",
		"npx cdk synth",
	}
}
