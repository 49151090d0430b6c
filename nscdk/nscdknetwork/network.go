// Package nscdknetwork provides the per-stage network construct: a VPC with
// public and isolated subnets plus the application security group that the
// database and the GraphQL server share.
package nscdknetwork

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

// Network provides access to the stage's VPC and application security group.
type Network interface {
	// Vpc returns the stage VPC.
	Vpc() awsec2.IVpc
	// AppSecurityGroup returns the security group shared by the application's
	// compute and allowed to reach the database.
	AppSecurityGroup() awsec2.ISecurityGroup
}

// Props configures the Network construct.
type Props struct{}

type network struct {
	vpc awsec2.IVpc
	sg  awsec2.ISecurityGroup
}

// New creates the stage network: a two-AZ VPC without NAT gateways (the
// database lives in isolated subnets, Lambda functions attach via ENIs) and
// the application security group.
func New(scope constructs.Construct, _ Props) Network {
	scope = constructs.NewConstruct(scope, jsii.String("Network"))
	con := &network{}

	con.vpc = awsec2.NewVpc(scope, jsii.String("Vpc"), &awsec2.VpcProps{
		IpAddresses: awsec2.IpAddresses_Cidr(jsii.String("10.0.0.0/16")),
		MaxAzs:      jsii.Number(2),
		NatGateways: jsii.Number(0),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("data"),
				SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED,
				CidrMask:   jsii.Number(24),
			},
		},
	})

	// The app security group runs in isolated subnets, so credentials can
	// only be fetched through an interface endpoint.
	con.vpc.AddInterfaceEndpoint(jsii.String("SecretsManagerEndpoint"),
		&awsec2.InterfaceVpcEndpointOptions{
			Service: awsec2.InterfaceVpcEndpointAwsService_SECRETS_MANAGER(),
		})

	con.sg = awsec2.NewSecurityGroup(scope, jsii.String("AppSg"), &awsec2.SecurityGroupProps{
		Vpc:               con.vpc,
		SecurityGroupName: jsii.String(nscdkutil.ResourceName(scope, "app", nscdkutil.CasingKebab)),
		Description:       jsii.String("Application compute reaching the database"),
		AllowAllOutbound:  jsii.Bool(true),
	})

	return con
}

func (n *network) Vpc() awsec2.IVpc {
	return n.vpc
}

func (n *network) AppSecurityGroup() awsec2.ISecurityGroup {
	return n.sg
}
