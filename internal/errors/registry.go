package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Path not found",
		Detail:   "A path names a key or index that does not exist in the state tree. Only the last segment of a write may be new.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Value is not an object or array",
		Detail:   "A path walks through a scalar, or an array operation was applied to something that is not an array.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Invalid path",
		Detail:   "Paths are dotted keys with optional bracket indexes, for example todos[2].title.",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Array index out of range",
		Detail:   "Array indexes must be non-negative integers.",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Scheduler not available",
		Detail:   "The scheduler loop is already running or has been stopped.",
	},

	// ============================================
	// Document Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryDocument,
		Message:  "State file not found",
		Detail:   "The state document could not be read.",
	},
	"E101": {
		Category: CategoryDocument,
		Message:  "Invalid state document",
		Detail:   "The state document is not valid YAML or JSON.",
	},
	"E102": {
		Category: CategoryDocument,
		Message:  "State root is not observable",
		Detail:   "The top level of a state document must be a mapping or a sequence.",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid rstate.json",
		Detail:   "The configuration file is not valid JSON.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file given with --config does not exist.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field has a value outside its allowed range.",
	},

	// ============================================
	// Selector Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategorySelector,
		Message:  "Invalid selector expression",
		Detail:   "The selector expression could not be compiled.",
	},
	"E131": {
		Category: CategorySelector,
		Message:  "Selector evaluation failed",
		Detail:   "The selector expression failed while reading the state snapshot.",
	},

	// ============================================
	// Script Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryScript,
		Message:  "Invalid script step",
		Detail:   "Each step needs an op of set, delete, push or tick, and a path unless the op is tick.",
	},
	"E141": {
		Category: CategoryScript,
		Message:  "Script step failed",
		Detail:   "A script step could not be applied to the state tree.",
	},

	// ============================================
	// CLI Errors (E150-E169)
	// ============================================

	"E150": {
		Category: CategoryCLI,
		Message:  "Inspector server failed",
		Detail:   "The inspector HTTP server could not start or stopped unexpectedly.",
	},
	"E151": {
		Category: CategoryCLI,
		Message:  "Missing state document",
		Detail:   "The command needs the path of a state document as its first argument.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
