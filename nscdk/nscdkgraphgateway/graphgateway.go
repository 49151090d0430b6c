// Package nscdkgraphgateway provides the stage's GraphQL entry point: a
// regional REST API that proxies POST /graphql to a Go Lambda function
// running behind AWS Lambda Web Adapter.
package nscdkgraphgateway

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"

	"github.com/northslopehq/nsapp/nscdk/nscdklambda"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

// GraphGateway provides access to a GraphQL gateway backed by a Go Lambda function.
type GraphGateway interface {
	// Lambda returns the underlying LWA Lambda construct.
	Lambda() nscdklambda.Lambda
	// RestApi returns the API Gateway REST API.
	RestApi() awsapigateway.RestApi
	// AccessLogGroup returns the CloudWatch Log Group for API Gateway access logs.
	AccessLogGroup() awslogs.ILogGroup
}

// Props configures the GraphGateway construct.
type Props struct {
	// Entry is the path to the Go command directory.
	// Passed to the underlying LWA Lambda construct.
	// Required.
	Entry *string
	// Environment variables to pass to the Lambda function.
	Environment *map[string]*string
	// Vpc and SecurityGroups attach the Lambda to the stage network so it
	// can reach the database.
	Vpc            awsec2.IVpc
	SecurityGroups *[]awsec2.ISecurityGroup
}

type graphGateway struct {
	lambda         nscdklambda.Lambda
	restApi        awsapigateway.RestApi
	accessLogGroup awslogs.ILogGroup
}

// New creates a GraphGateway construct with a Lambda-backed REST API.
//
// Only POST /graphql is exposed externally. The Lambda can serve additional
// internal paths (like its /health readiness check) that remain accessible
// only via direct invocation.
func New(scope constructs.Construct, props Props) GraphGateway {
	scope = constructs.NewConstruct(scope, jsii.String("GraphGw"))
	con := &graphGateway{}

	con.lambda = nscdklambda.New(scope, nscdklambda.Props{
		Entry:          props.Entry,
		Environment:    props.Environment,
		Vpc:            props.Vpc,
		SecurityGroups: props.SecurityGroups,
	})

	stageIdent := nscdkutil.StageIdent(scope)
	apiName := con.lambda.Name() + strcase.ToCamel(stageIdent) + "Gateway"

	con.accessLogGroup = awslogs.NewLogGroup(scope, jsii.String("AccessLogGroup"), &awslogs.LogGroupProps{
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	// REGIONAL endpoints keep multi-region stages independent of the edge
	// network, matching the rest of the per-region topology.
	con.restApi = awsapigateway.NewRestApi(scope, jsii.String("Api"), &awsapigateway.RestApiProps{
		RestApiName: jsii.String(apiName),
		EndpointConfiguration: &awsapigateway.EndpointConfiguration{
			Types: &[]awsapigateway.EndpointType{awsapigateway.EndpointType_REGIONAL},
		},
		DeployOptions: &awsapigateway.StageOptions{
			StageName:            jsii.String("prod"),
			AccessLogDestination: awsapigateway.NewLogGroupLogDestination(con.accessLogGroup),
			AccessLogFormat: awsapigateway.AccessLogFormat_JsonWithStandardFields(
				&awsapigateway.JsonWithStandardFieldProps{
					Caller:         jsii.Bool(true),
					HttpMethod:     jsii.Bool(true),
					Ip:             jsii.Bool(true),
					Protocol:       jsii.Bool(true),
					RequestTime:    jsii.Bool(true),
					ResourcePath:   jsii.Bool(true),
					ResponseLength: jsii.Bool(true),
					Status:         jsii.Bool(true),
					User:           jsii.Bool(true),
				}),
		},
	})

	integration := awsapigateway.NewLambdaIntegration(con.lambda.Function(),
		&awsapigateway.LambdaIntegrationOptions{
			Proxy: jsii.Bool(true),
		})

	graphql := con.restApi.Root().AddResource(jsii.String("graphql"), nil)
	graphql.AddMethod(jsii.String("POST"), integration, nil)

	awscdk.NewCfnOutput(scope, jsii.String("GraphQLEndpoint"), &awscdk.CfnOutputProps{
		Key:         jsii.String(con.lambda.Name() + "GraphQLEndpoint"),
		Description: jsii.String("GraphQL endpoint URL"),
		Value:       con.restApi.Url(),
	})

	return con
}

func (g *graphGateway) Lambda() nscdklambda.Lambda {
	return g.lambda
}

func (g *graphGateway) RestApi() awsapigateway.RestApi {
	return g.restApi
}

func (g *graphGateway) AccessLogGroup() awslogs.ILogGroup {
	return g.accessLogGroup
}
