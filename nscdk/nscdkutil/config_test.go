//nolint:paralleltest // jsii runtime doesn't support parallel tests
package nscdkutil_test

import (
	"strings"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := nscdkutil.NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Qualifier != "nsapp" {
		t.Errorf("Qualifier = %q, want %q", cfg.Qualifier, "nsapp")
	}
	if cfg.SourceRepo() != "northslopehq/nsapp" {
		t.Errorf("SourceRepo() = %q, want %q", cfg.SourceRepo(), "northslopehq/nsapp")
	}
	if cfg.GithubBranch != "main" {
		t.Errorf("GithubBranch = %q, want %q", cfg.GithubBranch, "main")
	}
	if cfg.PrimaryRegion != "us-east-1" {
		t.Errorf("PrimaryRegion = %q, want %q", cfg.PrimaryRegion, "us-east-1")
	}
	if cfg.SecondaryRegion != "us-west-2" {
		t.Errorf("SecondaryRegion = %q, want %q", cfg.SecondaryRegion, "us-west-2")
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("NSAPP_QUALIFIER", "acmeapp")
	t.Setenv("GITHUB_ORG", "acme")
	t.Setenv("GITHUB_REPO", "app")
	t.Setenv("GITHUB_BRANCH", "release")
	t.Setenv("DEV_ACCOUNT_ID", "444444444444")
	t.Setenv("STG_ACCOUNT_ID", "555555555555")
	t.Setenv("PRD_ACCOUNT_ID", "666666666666")
	t.Setenv("PRIMARY_REGION", "eu-west-1")
	t.Setenv("SECONDARY_REGION", "eu-central-1")

	cfg, err := nscdkutil.NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SourceRepo() != "acme/app" {
		t.Errorf("SourceRepo() = %q, want %q", cfg.SourceRepo(), "acme/app")
	}
	if cfg.GithubBranch != "release" {
		t.Errorf("GithubBranch = %q, want %q", cfg.GithubBranch, "release")
	}
	if cfg.DevAccountID != "444444444444" {
		t.Errorf("DevAccountID = %q, want %q", cfg.DevAccountID, "444444444444")
	}
	if cfg.PrimaryRegion != "eu-west-1" {
		t.Errorf("PrimaryRegion = %q, want %q", cfg.PrimaryRegion, "eu-west-1")
	}
	if cfg.SecondaryRegion != "eu-central-1" {
		t.Errorf("SecondaryRegion = %q, want %q", cfg.SecondaryRegion, "eu-central-1")
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains []string
	}{
		{
			name:        "qualifier too long",
			env:         map[string]string{"NSAPP_QUALIFIER": "thisqualifieristoolong"},
			errContains: []string{"Qualifier", "maximum length"},
		},
		{
			name:        "account id too short",
			env:         map[string]string{"DEV_ACCOUNT_ID": "1234"},
			errContains: []string{"DevAccountID", "exactly 12"},
		},
		{
			name:        "account id not numeric",
			env:         map[string]string{"PRD_ACCOUNT_ID": "12345678901a"},
			errContains: []string{"PrdAccountID", "numeric"},
		},
		{
			name: "secondary equals primary",
			env: map[string]string{
				"PRIMARY_REGION":   "us-east-1",
				"SECONDARY_REGION": "us-east-1",
			},
			errContains: []string{"SecondaryRegion", "must differ"},
		},
		{
			name:        "unknown primary region",
			env:         map[string]string{"PRIMARY_REGION": "mars-north-1"},
			errContains: []string{"unknown AWS region", "mars-north-1"},
		},
		{
			name: "multiple errors reported together",
			env: map[string]string{
				"NSAPP_QUALIFIER": "thisqualifieristoolong",
				"STG_ACCOUNT_ID":  "nope",
			},
			errContains: []string{"Qualifier", "StgAccountID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := nscdkutil.NewConfig()
			if err == nil {
				t.Fatalf("expected error but got nil")
			}
			for _, contains := range tt.errContains {
				if !strings.Contains(err.Error(), contains) {
					t.Errorf("error %q should contain %q", err.Error(), contains)
				}
			}
		})
	}
}

func TestConfig_AccountForTier(t *testing.T) {
	cfg := &nscdkutil.Config{
		DevAccountID: "111111111111",
		StgAccountID: "222222222222",
		PrdAccountID: "333333333333",
	}

	tests := []struct {
		tier string
		want string
	}{
		{"dev", "111111111111"},
		{"stg", "222222222222"},
		{"prd", "333333333333"},
	}
	for _, tt := range tests {
		got, err := cfg.AccountForTier(tt.tier)
		if err != nil {
			t.Fatalf("AccountForTier(%q): unexpected error: %v", tt.tier, err)
		}
		if got != tt.want {
			t.Errorf("AccountForTier(%q) = %q, want %q", tt.tier, got, tt.want)
		}
	}

	if _, err := cfg.AccountForTier("prod"); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestConfigFromScope(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := &nscdkutil.Config{Qualifier: "testqual", PrimaryRegion: "us-east-1"}
	nscdkutil.StoreConfig(app, cfg)

	stack := awscdk.NewStack(app, jsii.String("TestStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String("us-east-1")},
	})

	got := nscdkutil.ConfigFromScope(stack)
	if got != cfg {
		t.Errorf("ConfigFromScope() = %v, want stored config", got)
	}
	if nscdkutil.Qualifier(stack) != "testqual" {
		t.Errorf("Qualifier() = %q, want %q", nscdkutil.Qualifier(stack), "testqual")
	}
}

func TestConfigFromScope_Missing(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic when config was never stored")
		}
	}()

	app := awscdk.NewApp(nil)
	nscdkutil.ConfigFromScope(app)
}

func TestStageIdent(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	if got := nscdkutil.StageIdent(stack); got != "" {
		t.Errorf("StageIdent() = %q, want empty outside a deployment stage", got)
	}

	nscdkutil.StoreStageIdent(stack, "stg-primary")
	if got := nscdkutil.StageIdent(stack); got != "stg-primary" {
		t.Errorf("StageIdent() = %q, want %q", got, "stg-primary")
	}
}
