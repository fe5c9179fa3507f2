package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E100-E199)
	// ============================================

	"E101": {
		Category:   CategoryReactive,
		Message:    "Target is not observable",
		Detail:     "Only non-nil struct pointers and maps with string keys can be observed.",
		Suggestion: "Pass &value instead of value.",
		DocURL:     "https://vloop.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryReactive,
		Message:  "Unknown key",
		Detail:   "The key is neither an exported field nor a vloop-tagged field of the observed struct.",
		DocURL:   "https://vloop.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryReactive,
		Message:  "Value type does not match key",
		Detail:   "Set was called with a value that is not assignable to the field or map element type.",
		DocURL:   "https://vloop.dev/docs/errors/E103",
	},
	"E104": {
		Category:   CategoryReactive,
		Message:    "Effect read inside its own write",
		Detail:     "An effect wrote to a dependency it tracks. The recursive notification was ignored.",
		Suggestion: "Use AllowRecurse() if the effect converges on its own.",
		DocURL:     "https://vloop.dev/docs/errors/E104",
	},

	// ============================================
	// Scheduler Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryScheduler,
		Message:  "Loop closed",
		Detail:   "A task was posted to a loop that is no longer running.",
		DocURL:   "https://vloop.dev/docs/errors/E201",
	},
	"E202": {
		Category:   CategoryScheduler,
		Message:    "Flush limit exceeded",
		Detail:     "Jobs kept re-enqueueing each other and the flush did not settle.",
		Suggestion: "Look for effects or watchers that write state they also read.",
		DocURL:     "https://vloop.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryScheduler,
		Message:  "Scheduled job panicked",
		Detail:   "The panic was recovered and the remaining jobs of the flush still ran.",
		DocURL:   "https://vloop.dev/docs/errors/E203",
	},

	// ============================================
	// Render Errors (E300-E399)
	// ============================================

	"E301": {
		Category:   CategoryRender,
		Message:    "Component render failed",
		Detail:     "The render function panicked. The previous output stays mounted.",
		Suggestion: "Render functions should only read state and return nodes.",
		DocURL:     "https://vloop.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryRender,
		Message:  "Lifecycle hook panicked",
		Detail:   "A Created, Mounted, Updated or Unmounted hook panicked.",
		DocURL:   "https://vloop.dev/docs/errors/E302",
	},
	"E303": {
		Category:   CategoryRender,
		Message:    "Component definition is not comparable",
		Detail:     "Component definitions are compared to decide whether a node can be patched in place.",
		Suggestion: "Use a pointer or a named func value as the component definition.",
		DocURL:     "https://vloop.dev/docs/errors/E303",
	},
	"E304": {
		Category: CategoryRender,
		Message:  "Duplicate key among siblings",
		Detail:   "Two siblings share a key. Only the last one is matched by the keyed diff.",
		DocURL:   "https://vloop.dev/docs/errors/E304",
	},

	// ============================================
	// Protocol Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "The frame header or payload could not be decoded.",
		DocURL:   "https://vloop.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategoryProtocol,
		Message:  "Unknown host operation",
		Detail:   "The frame contains an operation code this decoder does not know.",
		DocURL:   "https://vloop.dev/docs/errors/E402",
	},
	"E403": {
		Category: CategoryProtocol,
		Message:  "Unknown node ID",
		Detail:   "An operation referenced a node that was never created or was removed.",
		DocURL:   "https://vloop.dev/docs/errors/E403",
	},

	// ============================================
	// Config and CLI Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryConfig,
		Message:  "Invalid vloop.json",
		Detail:   "The configuration file could not be parsed as JSON.",
		DocURL:   "https://vloop.dev/docs/errors/E501",
	},
	"E502": {
		Category: CategoryConfig,
		Message:  "Invalid flush limit",
		Detail:   "scheduler.flushLimit must be at least 1.",
		DocURL:   "https://vloop.dev/docs/errors/E502",
	},
	"E503": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
		DocURL:   "https://vloop.dev/docs/errors/E503",
	},
	"E504": {
		Category: CategoryConfig,
		Message:  "Invalid serve address",
		Detail:   "serve.addr must be host:port.",
		DocURL:   "https://vloop.dev/docs/errors/E504",
	},
	"E505": {
		Category: CategoryConfig,
		Message:  "Invalid error format",
		Detail:   "--error-format must be one of pretty, compact or json.",
		DocURL:   "https://vloop.dev/docs/errors/E505",
	},
	"E550": {
		Category: CategoryCLI,
		Message:  "Watched state file unreadable",
		Detail:   "The demo state file is missing or not valid YAML.",
		DocURL:   "https://vloop.dev/docs/errors/E550",
	},
	"E551": {
		Category:   CategoryCLI,
		Message:    "Unknown error code",
		Suggestion: "Run vloop errors to list the registered codes.",
		DocURL:     "https://vloop.dev/docs/errors/E551",
	},
}

// GetAllCodes returns all registered error codes, sorted.
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
