//nolint:paralleltest // jsii runtime doesn't support parallel tests
package nscdklogbucket_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"
	"github.com/northslopehq/nsapp/nscdk/nscdklogbucket"
)

func synthTemplate(t *testing.T, app awscdk.App, stackName string) map[string]any {
	t.Helper()

	template := app.Synth(nil).GetStackByName(jsii.String(stackName)).Template()

	templateJSON, err := json.Marshal(template)
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}

	var tmpl map[string]any
	if err := json.Unmarshal(templateJSON, &tmpl); err != nil {
		t.Fatalf("failed to unmarshal template: %v", err)
	}
	return tmpl
}

func resourcesOfType(tmpl map[string]any, resourceType string) []map[string]any {
	resources, _ := tmpl["Resources"].(map[string]any)
	var out []map[string]any
	for _, val := range resources {
		res, ok := val.(map[string]any)
		if !ok {
			continue
		}
		if res["Type"] == resourceType {
			out = append(out, res)
		}
	}
	return out
}

func TestNew_BucketLockdown(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	nscdklogbucket.New(stack, nscdklogbucket.Props{})

	tmpl := synthTemplate(t, app, "TestStack")
	buckets := resourcesOfType(tmpl, "AWS::S3::Bucket")
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	props, _ := buckets[0]["Properties"].(map[string]any)

	block, ok := props["PublicAccessBlockConfiguration"].(map[string]any)
	if !ok {
		t.Fatal("bucket should have PublicAccessBlockConfiguration")
	}
	for _, flag := range []string{"BlockPublicAcls", "BlockPublicPolicy", "IgnorePublicAcls", "RestrictPublicBuckets"} {
		if block[flag] != true {
			t.Errorf("PublicAccessBlockConfiguration.%s = %v, want true", flag, block[flag])
		}
	}

	if props["AccessControl"] != "LogDeliveryWrite" {
		t.Errorf("AccessControl = %v, want LogDeliveryWrite", props["AccessControl"])
	}

	ownership, _ := props["OwnershipControls"].(map[string]any)
	rules, _ := ownership["Rules"].([]any)
	if len(rules) != 1 {
		t.Fatalf("OwnershipControls.Rules = %v, want one rule", rules)
	}
	rule, _ := rules[0].(map[string]any)
	if rule["ObjectOwnership"] != "ObjectWriter" {
		t.Errorf("ObjectOwnership = %v, want ObjectWriter", rule["ObjectOwnership"])
	}
}

func TestNew_EnforcesSSL(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	nscdklogbucket.New(stack, nscdklogbucket.Props{})

	tmpl := synthTemplate(t, app, "TestStack")
	policies := resourcesOfType(tmpl, "AWS::S3::BucketPolicy")
	if len(policies) != 1 {
		t.Fatalf("got %d bucket policies, want 1", len(policies))
	}

	policyJSON, err := json.Marshal(policies[0])
	if err != nil {
		t.Fatalf("failed to marshal bucket policy: %v", err)
	}
	if !strings.Contains(string(policyJSON), "aws:SecureTransport") {
		t.Error("bucket policy should deny insecure transport")
	}
}

func TestAttachAccessLogging(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	dest := nscdklogbucket.New(stack, nscdklogbucket.Props{})
	target := awss3.NewBucket(stack, jsii.String("Target"), &awss3.BucketProps{})

	err := nscdklogbucket.AttachAccessLogging(target, dest.Bucket(), nscdklogbucket.LogObjectKeyPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tmpl := synthTemplate(t, app, "TestStack")
	var targetProps map[string]any
	for _, bucket := range resourcesOfType(tmpl, "AWS::S3::Bucket") {
		props, _ := bucket["Properties"].(map[string]any)
		if _, hasLogging := props["LoggingConfiguration"]; hasLogging {
			targetProps = props
			break
		}
	}
	if targetProps == nil {
		t.Fatal("no bucket with LoggingConfiguration found")
	}

	logging, _ := targetProps["LoggingConfiguration"].(map[string]any)
	if logging["LogFilePrefix"] != "logs/" {
		t.Errorf("LogFilePrefix = %v, want logs/", logging["LogFilePrefix"])
	}
	if logging["DestinationBucketName"] == nil {
		t.Error("DestinationBucketName should reference the access-log bucket")
	}
}

func TestAttachAccessLogging_CrossEnvironment(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	primary := awscdk.NewStack(app, jsii.String("PrimaryStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("111111111111"),
			Region:  jsii.String("us-east-1"),
		},
	})
	secondary := awscdk.NewStack(app, jsii.String("SecondaryStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("111111111111"),
			Region:  jsii.String("us-west-2"),
		},
	})

	dest := nscdklogbucket.New(primary, nscdklogbucket.Props{})
	target := awss3.NewBucket(secondary, jsii.String("Replication"), nil)

	err := nscdklogbucket.AttachAccessLogging(target, dest.Bucket(), nscdklogbucket.LogObjectKeyPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Synthesis must resolve the destination to the bucket's physical name;
	// without one, CDK rejects the cross-environment reference.
	tmpl := synthTemplate(t, app, "SecondaryStack")
	buckets := resourcesOfType(tmpl, "AWS::S3::Bucket")
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	props, _ := buckets[0]["Properties"].(map[string]any)
	logging, ok := props["LoggingConfiguration"].(map[string]any)
	if !ok {
		t.Fatal("target bucket should have LoggingConfiguration")
	}
	if logging["LogFilePrefix"] != "logs/" {
		t.Errorf("LogFilePrefix = %v, want logs/", logging["LogFilePrefix"])
	}
	name, ok := logging["DestinationBucketName"].(string)
	if !ok || name == "" {
		t.Errorf("DestinationBucketName = %v, want the destination's physical name",
			logging["DestinationBucketName"])
	}
}

func TestAttachAccessLogging_ImportedBucket(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	dest := nscdklogbucket.New(stack, nscdklogbucket.Props{})
	imported := awss3.Bucket_FromBucketName(stack, jsii.String("Imported"), jsii.String("some-existing-bucket"))

	err := nscdklogbucket.AttachAccessLogging(imported, dest.Bucket(), nscdklogbucket.LogObjectKeyPrefix)
	if err == nil {
		t.Fatal("expected error for imported bucket reference")
	}
	if !strings.Contains(err.Error(), "imported") {
		t.Errorf("error %q should mention imported references", err.Error())
	}
}
