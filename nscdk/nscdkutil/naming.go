package nscdkutil

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/iancoleman/strcase"
)

// Casing specifies how to format an identifier string.
type Casing int

const (
	// CasingCamel formats as CamelCase (e.g., "NsappStgPrimaryGraphApi").
	CasingCamel Casing = iota
	// CasingLowerCamel formats as lowerCamelCase (e.g., "nsappStgPrimaryGraphApi").
	CasingLowerCamel
	// CasingSnake formats as snake_case (e.g., "nsapp_stg_primary_graph_api").
	CasingSnake
	// CasingScreamingSnake formats as SCREAMING_SNAKE_CASE (e.g., "NSAPP_STG_PRIMARY_GRAPH_API").
	CasingScreamingSnake
	// CasingKebab formats as kebab-case (e.g., "nsapp-stg-primary-graph-api").
	CasingKebab
)

// ResourceName generates a resource identifier prefixed with the qualifier and
// the enclosing deployment stage. The label is a free-form string supplied by
// the caller.
//
// Inside a deployment stage the format is "{qualifier}-{stage}-{label}";
// outside one (e.g., the pipeline stack) it is "{qualifier}-{label}". Both are
// converted to the requested casing.
func ResourceName(scope constructs.Construct, label string, casing Casing) string {
	qualifier := Qualifier(scope)
	stageIdent := StageIdent(scope)

	var base string
	if stageIdent != "" {
		base = fmt.Sprintf("%s-%s-%s", qualifier, stageIdent, label)
	} else {
		base = fmt.Sprintf("%s-%s", qualifier, label)
	}

	return applyCasing(base, casing)
}

func applyCasing(s string, casing Casing) string {
	switch casing {
	case CasingCamel:
		return strcase.ToCamel(s)
	case CasingLowerCamel:
		return strcase.ToLowerCamel(s)
	case CasingSnake:
		return strcase.ToSnake(s)
	case CasingScreamingSnake:
		return strcase.ToScreamingSnake(s)
	case CasingKebab:
		return strcase.ToKebab(s)
	default:
		return strcase.ToCamel(s)
	}
}
