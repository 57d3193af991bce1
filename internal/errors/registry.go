package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Value Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryValue,
		Message:  "Write to frozen value",
		Detail:   "Published store values are read-only. Build a new value and pass it to Set instead of mutating the current one.",
	},
	"E002": {
		Category: CategoryValue,
		Message:  "Invalid JSON document",
	},
	"E003": {
		Category: CategoryValue,
		Message:  "Unsupported value for JSON encoding",
	},

	// ============================================
	// Runtime Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryRuntime,
		Message:  "Listener panicked during notification",
		Detail:   "The panic was isolated; the remaining listeners of the round were still notified.",
	},
	"E021": {
		Category: CategoryRuntime,
		Message:  "Change hook panicked",
	},
	"E022": {
		Category: CategoryRuntime,
		Message:  "Async producer panicked",
	},
	"E023": {
		Category: CategoryRuntime,
		Message:  "Hook order changed",
	},

	// ============================================
	// Config Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration",
	},
	"E041": {
		Category: CategoryConfig,
		Message:  "Failed to parse configuration",
	},
	"E042": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E043": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
	},

	// ============================================
	// CLI Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryCLI,
		Message:  "Failed to load initial state",
	},
	"E061": {
		Category: CategoryCLI,
		Message:  "Terminal initialization failed",
	},
	"E062": {
		Category: CategoryCLI,
		Message:  "No value at path",
	},
	"E063": {
		Category: CategoryCLI,
		Message:  "Failed to read request body",
	},
	"E064": {
		Category: CategoryCLI,
		Message:  "Failed to write benchmark report",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
