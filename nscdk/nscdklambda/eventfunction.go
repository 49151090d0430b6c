package nscdklambda

import (
	"maps"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"

	"github.com/northslopehq/nsapp/nscdk/nscdkloggroup"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

// EventProps configures an event-invoked Lambda function.
type EventProps struct {
	// Entry is the path to the Go command directory.
	// Must match pattern "<component>/cmd/<command>".
	// Required.
	Entry *string
	// Environment variables to pass to the function.
	Environment *map[string]*string
}

// NewEventFunction creates a Go Lambda function invoked directly with
// platform events, without the Lambda Web Adapter layer. Use this for
// handlers built on the runtime API (aws-lambda-go) rather than an HTTP
// server.
func NewEventFunction(scope constructs.Construct, props EventProps) Lambda {
	component, command, err := ParseEntry(*props.Entry)
	if err != nil {
		panic(err)
	}
	scopeName := strcase.ToCamel(component) + strcase.ToCamel(command)
	scope = constructs.NewConstruct(scope, jsii.String(scopeName))
	con := &lambda{name: scopeName}

	functionName := nscdkutil.ResourceName(scope, scopeName, nscdkutil.CasingKebab)

	env := make(map[string]*string)
	if props.Environment != nil {
		maps.Copy(env, *props.Environment)
	}
	env["NS_SERVICE_NAME"] = jsii.String(functionName)

	con.logGroup = nscdkloggroup.New(scope, scopeName+"Logs", nscdkloggroup.Props{
		Purpose: jsii.String("Lambda function " + scopeName),
	}).LogGroup()

	con.function = awscdklambdagoalpha.NewGoFunction(scope, jsii.String("Function"),
		&awscdklambdagoalpha.GoFunctionProps{
			FunctionName:  jsii.String(functionName),
			Entry:         props.Entry,
			Architecture:  awslambda.Architecture_ARM_64(),
			Runtime:       awslambda.Runtime_PROVIDED_AL2023(),
			MemorySize:    jsii.Number(128),
			Timeout:       awscdk.Duration_Seconds(jsii.Number(30)),
			Environment:   &env,
			Bundling:      nscdkutil.ReproducibleGoBundling(),
			LogGroup:      con.logGroup,
			LoggingFormat: awslambda.LoggingFormat_JSON,
		})

	return con
}
