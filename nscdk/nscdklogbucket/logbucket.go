// Package nscdklogbucket provides the shared server-access-log bucket and the
// wiring that points other buckets' access logging at it.
//
// The delivery pipeline creates buckets the app never holds a construct
// reference for at declaration time: its artifact bucket and one replication
// bucket per cross-region support stack. AttachAccessLogging retrofits
// access logging onto those buckets after the pipeline is finalized.
package nscdklogbucket

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
)

// LogObjectKeyPrefix is the key prefix all wired buckets write their access
// logs under.
const LogObjectKeyPrefix = "logs/"

// Bucket provides access to the shared access-log bucket.
type Bucket interface {
	// Bucket returns the underlying S3 bucket.
	Bucket() awss3.IBucket
}

// Props configures the access-log bucket construct.
type Props struct{}

type logBucket struct {
	bucket awss3.IBucket
}

// New creates the shared access-log bucket: all public access blocked,
// S3-managed encryption, SSL-only access, destroyed together with its
// objects on stack teardown. S3's log delivery group needs ACL access, so
// object ownership is set to ObjectWriter with the log-delivery-write ACL.
func New(scope constructs.Construct, _ Props) Bucket {
	scope = constructs.NewConstruct(scope, jsii.String("AccessLogs"))
	con := &logBucket{}

	con.bucket = awss3.NewBucket(scope, jsii.String("Bucket"), &awss3.BucketProps{
		// Replication buckets in cross-region support stacks reference this
		// bucket from another environment, which requires an explicit
		// physical name.
		BucketName:        awscdk.PhysicalName_GENERATE_IF_NEEDED(),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		ObjectOwnership:   awss3.ObjectOwnership_OBJECT_WRITER,
		AccessControl:     awss3.BucketAccessControl_LOG_DELIVERY_WRITE,
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
	})

	return con
}

func (b *logBucket) Bucket() awss3.IBucket {
	return b.bucket
}

// AttachAccessLogging points target's server access logging at dest under the
// given key prefix.
//
// It works by reaching the target's CfnBucket escape hatch: the buckets this
// is used on (pipeline artifact and replication buckets) are created by the
// pipeline library, which offers no logging option of its own. The target
// must be a bucket defined in this app; imported bucket references have no
// CfnBucket behind them and are reported as an error rather than silently
// skipped.
func AttachAccessLogging(target awss3.IBucket, dest awss3.IBucket, prefix string) error {
	child := target.Node().DefaultChild()
	if child == nil {
		return errors.Newf("bucket %s has no default child; is it an imported reference?",
			*target.Node().Path())
	}

	cfnBucket, ok := child.(awss3.CfnBucket)
	if !ok {
		return errors.Newf("default child of %s is %T, not a CfnBucket",
			*target.Node().Path(), child)
	}

	cfnBucket.SetLoggingConfiguration(&awss3.CfnBucket_LoggingConfigurationProperty{
		DestinationBucketName: dest.BucketName(),
		LogFilePrefix:         jsii.String(prefix),
	})

	return nil
}
