package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"

	"github.com/northslopehq/nsapp/nscdk/nscdkdatabase"
	"github.com/northslopehq/nsapp/nscdk/nscdkgraphgateway"
	"github.com/northslopehq/nsapp/nscdk/nscdklambda"
	"github.com/northslopehq/nsapp/nscdk/nscdknetwork"
	"github.com/northslopehq/nsapp/nscdk/nscdkpipeline"
	"github.com/northslopehq/nsapp/nscdk/nscdktopology"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

// AppStage is one deployable copy of the application: the stage network, the
// database (primary or read replica), the GraphQL gateway, and the
// diagnostic Lambda.
type AppStage struct {
	stage awscdk.Stage
	db    nscdkdatabase.Database
}

var _ nscdkpipeline.DeployedStage = (*AppStage)(nil)

// NewAppStage builds the application stage for one StageSpec. It satisfies
// nscdkpipeline.StageFactory.
//
// For replica stages, replicaSource is the database instance of the primary
// stage this one replicates; the credentials secret is resolved by the name
// it was replicated under from the primary's region.
func NewAppStage(
	scope constructs.Construct, spec nscdktopology.StageSpec, replicaSource awsrds.IDatabaseInstance,
) nscdkpipeline.DeployedStage {
	stage := awscdk.NewStage(scope, jsii.String(strcase.ToCamel(spec.Name)), &awscdk.StageProps{
		Env: &awscdk.Environment{
			Account: jsii.String(spec.Env.Account),
			Region:  jsii.String(spec.Env.Region),
		},
	})

	qualifier := nscdkutil.Qualifier(scope)

	stack := awscdk.NewStack(stage, jsii.String("App"), &awscdk.StackProps{
		Description: jsii.Sprintf("%s application (stage: %s, region: %s)",
			qualifier, spec.Name, spec.Env.Region),
		Synthesizer: awscdk.NewDefaultStackSynthesizer(&awscdk.DefaultStackSynthesizerProps{
			Qualifier: jsii.String(qualifier),
		}),
	})
	nscdkutil.StoreStageIdent(stack, spec.Name)

	con := &AppStage{stage: stage}

	network := nscdknetwork.New(stack, nscdknetwork.Props{})

	// Replica stages read the secret the primary replicated into their
	// region, so the name must be derived from the primary's stage name.
	secretStage := spec.Name
	if !spec.OwnsDatabase() {
		secretStage = spec.ReplicatesFrom
	}
	secretName := nscdkdatabase.CredentialsSecretName(qualifier, secretStage)

	con.db = nscdkdatabase.New(stack, nscdkdatabase.Props{
		Network:              network,
		SecretName:           secretName,
		PrimaryInstance:      replicaSource,
		SecretReplicaRegions: spec.SecretReplicaRegions,
	})

	gateway := nscdkgraphgateway.New(stack, nscdkgraphgateway.Props{
		Entry: jsii.String("backend/cmd/gqlserver"),
		Environment: &map[string]*string{
			"NS_DB_SECRET_NAME": jsii.String(secretName),
			"NS_DB_NAME":        jsii.String(nscdkdatabase.DatabaseName),
		},
		Vpc:            network.Vpc(),
		SecurityGroups: &[]awsec2.ISecurityGroup{network.AppSecurityGroup()},
	})

	con.db.Secret().GrantRead(gateway.Lambda().Function(), nil)
	con.db.Instance().Connections().AllowDefaultPortFrom(network.AppSecurityGroup(),
		jsii.String("GraphQL server"))

	// Diagnostic echo handler, invoked directly (no gateway route).
	nscdklambda.NewEventFunction(stack, nscdklambda.EventProps{
		Entry: jsii.String("backend/cmd/logecho"),
	})

	return con
}

// Stage returns the CDK stage added to the pipeline.
func (s *AppStage) Stage() awscdk.Stage {
	return s.stage
}

// DatabaseInstance returns the stage's database handle for downstream
// replica stages.
func (s *AppStage) DatabaseInstance() awsrds.IDatabaseInstance {
	return s.db.Instance()
}
