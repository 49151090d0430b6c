//nolint:paralleltest // jsii runtime doesn't support parallel tests
package nscdkutil_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

func TestPipelineStackName(t *testing.T) {
	tests := []struct {
		qualifier   string
		regionIdent string
		want        string
	}{
		{"nsapp", "Use1", "nsappUse1Delivery"},
		{"acmeapp", "Euw1", "acmeappEuw1Delivery"},
	}
	for _, tt := range tests {
		got := nscdkutil.PipelineStackName(tt.qualifier, tt.regionIdent)
		if got != tt.want {
			t.Errorf("PipelineStackName(%q, %q) = %q, want %q", tt.qualifier, tt.regionIdent, got, tt.want)
		}
	}
}

func TestNewPipelineStack(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := &nscdkutil.Config{
		Qualifier:       "testqual",
		PrimaryRegion:   "us-east-1",
		SecondaryRegion: "us-west-2",
	}
	nscdkutil.StoreConfig(app, cfg)

	stack := nscdkutil.NewPipelineStack(app, cfg)

	if *stack.StackName() != "testqualUse1Delivery" {
		t.Errorf("StackName() = %q, want %q", *stack.StackName(), "testqualUse1Delivery")
	}
	if *stack.Region() != "us-east-1" {
		t.Errorf("Region() = %q, want %q", *stack.Region(), "us-east-1")
	}
	if !cfg.IsPrimaryRegionStack(stack) {
		t.Error("IsPrimaryRegionStack() = false, want true")
	}
}
