// Package nscdkutil provides shared utilities for the nsapp CDK application.
//
// # Configuration
//
// All synthesis-time configuration is read from environment variables with
// fallback defaults (see [Config]). Validate it once in main with [NewConfig],
// then store it in the construct tree with [StoreConfig] so constructs deep in
// the tree can retrieve it via [ConfigFromScope] without threading a pointer
// through every Props struct:
//
//	cfg, err := nscdkutil.NewConfig()
//	if err != nil {
//	    panic(err)
//	}
//	nscdkutil.StoreConfig(app, cfg)
//
// # Naming
//
// [ResourceName] produces qualified resource identifiers scoped to the
// enclosing deployment stage, and [RegionIdentFor] maps AWS region codes to
// the short identifiers used in stack names.
//
// # Stacks
//
// [NewPipelineStack] creates the single stack hosting the delivery pipeline,
// with the bootstrap qualifier wired into the synthesizer.
package nscdkutil
