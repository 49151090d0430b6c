package nscdkutil

import (
	"fmt"
	"strings"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Config holds all synthesis-time configuration. Every value is read from the
// environment with a fallback default so a bare `cdk synth` on a developer
// machine produces a deterministic pipeline.
type Config struct {
	// Qualifier prefixes all stack and resource names. Max 10 characters
	// per the CDK bootstrap qualifier limit.
	Qualifier string `env:"NSAPP_QUALIFIER" envDefault:"nsapp" validate:"required,max=10"`

	// Source repository the delivery pipeline tracks.
	GithubOrg    string `env:"GITHUB_ORG" envDefault:"northslopehq" validate:"required"`
	GithubRepo   string `env:"GITHUB_REPO" envDefault:"nsapp" validate:"required"`
	GithubBranch string `env:"GITHUB_BRANCH" envDefault:"main" validate:"required"`

	// One AWS account per environment tier.
	DevAccountID string `env:"DEV_ACCOUNT_ID" envDefault:"111111111111" validate:"required,len=12,number"`
	StgAccountID string `env:"STG_ACCOUNT_ID" envDefault:"222222222222" validate:"required,len=12,number"`
	PrdAccountID string `env:"PRD_ACCOUNT_ID" envDefault:"333333333333" validate:"required,len=12,number"`

	// PrimaryRegion hosts the pipeline, dev/qa, and every database-owning
	// stage. SecondaryRegion hosts the read-replica stages.
	PrimaryRegion   string `env:"PRIMARY_REGION" envDefault:"us-east-1" validate:"required"`
	SecondaryRegion string `env:"SECONDARY_REGION" envDefault:"us-west-2" validate:"required,nefield=PrimaryRegion"`
}

// NewConfig reads and validates all synthesis-time environment variables.
// All problems are reported at once so a misconfigured CI job fails with a
// complete picture instead of one error per run.
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse synthesis environment")
	}

	var readErrs []string
	for _, region := range []string{cfg.PrimaryRegion, cfg.SecondaryRegion} {
		if region != "" && !IsKnownRegion(region) {
			readErrs = append(readErrs, fmt.Sprintf(
				"unknown AWS region %q - add it to nscdkutil.RegionIdents", region))
		}
	}
	if len(readErrs) > 0 {
		return nil, errors.Errorf("synthesis environment errors:\n  - %s", strings.Join(readErrs, "\n  - "))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return nil, errors.Errorf("synthesis environment validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return nil, errors.Wrap(err, "synthesis environment validation failed")
	}

	return cfg, nil
}

// SourceRepo returns the "owner/repository" reference for the pipeline source.
func (c *Config) SourceRepo() string {
	return c.GithubOrg + "/" + c.GithubRepo
}

// AccountForTier maps an environment tier ("dev", "stg", "prd") to its account.
func (c *Config) AccountForTier(tier string) (string, error) {
	switch tier {
	case "dev":
		return c.DevAccountID, nil
	case "stg":
		return c.StgAccountID, nil
	case "prd":
		return c.PrdAccountID, nil
	default:
		return "", errors.Newf("unknown environment tier %q", tier)
	}
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s (got %q)", e.Field(), e.Param(), e.Value())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters (got %q)", e.Field(), e.Param(), e.Value())
	case "number":
		return fmt.Sprintf("%s must be numeric (got %q)", e.Field(), e.Value())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s (got %q)", e.Field(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Field(), e.Tag())
	}
}

// configContextKey is the well-known key used to store validated Config in the construct tree.
const configContextKey = "__nscdkutil_config"

// stageIdentContextKey stores the stage identifier on stacks created inside a
// deployment stage, for retrieval via StageIdent.
const stageIdentContextKey = "__nscdkutil_stage_ident"

// StoreConfig stores a validated Config in the app's context so it can be
// retrieved anywhere in the construct tree via ConfigFromScope.
func StoreConfig(scope constructs.Construct, cfg *Config) {
	scope.Node().SetContext(jsii.String(configContextKey), cfg)
}

// ConfigFromScope retrieves the validated Config from the construct tree.
// It panics if Config was not stored first.
func ConfigFromScope(scope constructs.Construct) *Config {
	val := scope.Node().TryGetContext(jsii.String(configContextKey))
	if val == nil {
		panic("nscdkutil.Config not found in construct tree - was StoreConfig called?")
	}
	cfg, ok := val.(*Config)
	if !ok {
		panic(fmt.Sprintf("nscdkutil.Config has unexpected type %T", val))
	}
	return cfg
}

// StoreStageIdent stores the deployment stage identifier on a construct,
// typically the application stack created inside a pipeline stage.
func StoreStageIdent(scope constructs.Construct, ident string) {
	scope.Node().SetContext(jsii.String(stageIdentContextKey), ident)
}

// StageIdent retrieves the deployment stage identifier stored with
// StoreStageIdent. Returns "" outside a deployment stage.
func StageIdent(scope constructs.Construct) string {
	val := scope.Node().TryGetContext(jsii.String(stageIdentContextKey))
	if val == nil {
		return ""
	}
	ident, ok := val.(string)
	if !ok {
		return ""
	}
	return ident
}

// Qualifier returns the CDK qualifier. Retrieves Config from the construct tree.
func Qualifier(scope constructs.Construct) string {
	return ConfigFromScope(scope).Qualifier
}

// PrimaryRegion returns the primary region. Retrieves Config from the construct tree.
func PrimaryRegion(scope constructs.Construct) string {
	return ConfigFromScope(scope).PrimaryRegion
}

// SecondaryRegion returns the secondary region. Retrieves Config from the construct tree.
func SecondaryRegion(scope constructs.Construct) string {
	return ConfigFromScope(scope).SecondaryRegion
}
