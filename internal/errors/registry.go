package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration errors (E100-E139)

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid application identifier",
		Detail:   "The application identifier is the first segment of every message key and must be between 3 and 50 alphanumerical characters.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid locale",
		Detail:   "Locales must use the language-country format (e.g. en-US).",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Pages directory not found",
		Detail:   "None of the supported pages directories exists in the project.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported option combination",
		Detail:   "Some configuration options cannot be used together.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "No locales configured",
		Detail:   "At least one actual locale is required. The first one is the default locale.",
	},
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "polyroute.json could not be read or is not valid JSON.",
	},

	// CLI errors (E140-E149)

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command line argument has an invalid value.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "No polyroute.json was found in the current directory or any of its parents.",
	},

	// Publish errors (E150-E159)

	"E150": {
		Category: CategoryPublish,
		Message:  "Manifest publish failed",
		Detail:   "The rules manifest could not be written to its destination.",
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
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
