package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/northslopehq/nsapp/infra/cdk"
	"github.com/northslopehq/nsapp/nscdk/nscdkpipeline"
	"github.com/northslopehq/nsapp/nscdk/nscdktopology"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

func main() {
	defer jsii.Close()
	app := awscdk.NewApp(nil)

	cfg, err := nscdkutil.NewConfig()
	if err != nil {
		panic(err)
	}
	nscdkutil.StoreConfig(app, cfg)

	topo, err := nscdktopology.Build(nscdktopology.Params{
		Source: nscdktopology.SourceSpec{
			Owner:  cfg.GithubOrg,
			Repo:   cfg.GithubRepo,
			Branch: cfg.GithubBranch,
		},
		DevAccount:      cfg.DevAccountID,
		StgAccount:      cfg.StgAccountID,
		PrdAccount:      cfg.PrdAccountID,
		PrimaryRegion:   cfg.PrimaryRegion,
		SecondaryRegion: cfg.SecondaryRegion,
	})
	if err != nil {
		panic(err)
	}

	stack := nscdkutil.NewPipelineStack(app, cfg)
	nscdkpipeline.New(stack, nscdkpipeline.Props{
		Topology: topo,
		NewStage: cdk.NewAppStage,
	})

	app.Synth(nil)
}
