// Package nscdkdatabase provides the per-stage relational database construct.
//
// A stage either owns its database (a Postgres instance with generated admin
// credentials, optionally replicated to other regions via Secrets Manager
// secret replication) or replicates another stage's database (a cross-region
// read replica created from the primary stage's instance handle).
package nscdkdatabase

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/northslopehq/nsapp/nscdk/nscdknetwork"
)

// AdminUsername is the generated admin credential's username.
const AdminUsername = "nsadmin"

// DatabaseName is the initial database created on primary instances.
const DatabaseName = "app"

// Database provides access to a stage's database instance and its
// credentials secret.
type Database interface {
	// Instance returns the database instance handle. For replica stages this
	// is the read replica, not the source.
	Instance() awsrds.IDatabaseInstance
	// Secret returns the credentials secret. For replica stages this is a
	// reference to the secret replicated from the primary's region.
	Secret() awssecretsmanager.ISecret
}

// Props configures the Database construct.
type Props struct {
	// Network supplies the VPC and security group. Required.
	Network nscdknetwork.Network

	// SecretName is the deterministic name of the credentials secret. Use
	// CredentialsSecretName so primaries and their replicas agree on it.
	// Required.
	SecretName string

	// PrimaryInstance, when set, turns this database into a read replica of
	// the given instance instead of creating a new primary.
	PrimaryInstance awsrds.IDatabaseInstance

	// SecretReplicaRegions lists regions the credentials secret replicates
	// to. Only valid on primaries; replica stages read the replicated secret.
	SecretReplicaRegions []string
}

// CredentialsSecretName returns the deterministic Secrets Manager name of a
// stage's database credentials. Replica stages derive the name from the
// primary stage they replicate, so the replicated copy resolves in their
// own region.
func CredentialsSecretName(qualifier, stageName string) string {
	return fmt.Sprintf("%s/%s/db-credentials", qualifier, stageName)
}

type database struct {
	instance awsrds.IDatabaseInstance
	secret   awssecretsmanager.ISecret
}

// New creates the stage database.
//
// Primary mode (Props.PrimaryInstance nil): a Postgres instance in the
// isolated subnets, admin credentials generated into a named secret that is
// replicated to Props.SecretReplicaRegions.
//
// Replica mode: a read replica sourced from Props.PrimaryInstance, with the
// credentials secret referenced by the name it was replicated under.
func New(scope constructs.Construct, props Props) Database {
	scope = constructs.NewConstruct(scope, jsii.String("Database"))
	con := &database{}

	if props.PrimaryInstance != nil && len(props.SecretReplicaRegions) > 0 {
		panic("nscdkdatabase: secret replica regions are declared on primaries, not replicas")
	}

	vpc := props.Network.Vpc()
	subnets := &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED}
	instanceType := awsec2.InstanceType_Of(awsec2.InstanceClass_BURSTABLE3, awsec2.InstanceSize_MICRO)
	securityGroups := &[]awsec2.ISecurityGroup{props.Network.AppSecurityGroup()}

	if props.PrimaryInstance != nil {
		con.instance = awsrds.NewDatabaseInstanceReadReplica(scope, jsii.String("Replica"),
			&awsrds.DatabaseInstanceReadReplicaProps{
				SourceDatabaseInstance: props.PrimaryInstance,
				InstanceType:           instanceType,
				Vpc:                    vpc,
				VpcSubnets:             subnets,
				SecurityGroups:         securityGroups,
				DeletionProtection:     jsii.Bool(false),
				RemovalPolicy:          awscdk.RemovalPolicy_DESTROY,
			})

		con.secret = awssecretsmanager.Secret_FromSecretNameV2(scope,
			jsii.String("ReplicatedSecret"), jsii.String(props.SecretName))

		return con
	}

	var replicaRegions []*awssecretsmanager.ReplicaRegion
	for _, region := range props.SecretReplicaRegions {
		replicaRegions = append(replicaRegions, &awssecretsmanager.ReplicaRegion{
			Region: jsii.String(region),
		})
	}

	credentials := awsrds.Credentials_FromGeneratedSecret(jsii.String(AdminUsername),
		&awsrds.CredentialsBaseOptions{
			SecretName:     jsii.String(props.SecretName),
			ReplicaRegions: &replicaRegions,
		})

	instance := awsrds.NewDatabaseInstance(scope, jsii.String("Instance"),
		&awsrds.DatabaseInstanceProps{
			Engine: awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
				Version: awsrds.PostgresEngineVersion_VER_16_4(),
			}),
			InstanceType:       instanceType,
			Vpc:                vpc,
			VpcSubnets:         subnets,
			SecurityGroups:     securityGroups,
			Credentials:        credentials,
			DatabaseName:       jsii.String(DatabaseName),
			AllocatedStorage:   jsii.Number(20),
			MultiAz:            jsii.Bool(false),
			StorageEncrypted:   jsii.Bool(true),
			DeletionProtection: jsii.Bool(false),
			RemovalPolicy:      awscdk.RemovalPolicy_DESTROY,
		})

	con.instance = instance
	con.secret = instance.Secret()

	return con
}

func (d *database) Instance() awsrds.IDatabaseInstance {
	return d.instance
}

func (d *database) Secret() awssecretsmanager.ISecret {
	return d.secret
}
