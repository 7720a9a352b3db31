package resource

import (
	"strings"
	"unicode"
)

// Descriptor configures the generic handlers for one entity type.
// Descriptors are defined at startup and never mutated afterwards.
type Descriptor struct {
	// Collection is the document collection handle, e.g. "categories".
	Collection string

	// DisplayName is the human-readable entity name used in response
	// messages. Derived from Collection when empty.
	DisplayName string

	// LangFields lists base names of localizable fields. Each base name has
	// an "En" and an "Ar" stored variant.
	LangFields []string

	// Select is the default projection spec applied to reads. Leave empty
	// for entities whose documents are mutated through updateOne, so the
	// merge sees the full stored document.
	Select string

	// Sort is the default sort spec for list responses.
	Sort string

	// SearchFields are the stored field names matched by keyword search.
	SearchFields []string

	// Populate resolves a reference field into its embedded document.
	Populate *PopulateSpec

	// Message overrides the generated create-success message.
	Message string

	// ReturnData controls whether createOne and updateOne echo the document.
	ReturnData bool
}

// PopulateSpec describes a reference join: the local field holding the
// referenced id, the collection it points into, and the shape of the
// embedded document.
type PopulateSpec struct {
	Field      string
	Collection string
	Select     string
	LangFields []string
}

func (d Descriptor) displayName() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return humanize(d.Collection)
}

func (d Descriptor) createdMessage() string {
	if d.Message != "" {
		return d.Message
	}
	return d.displayName() + " created successfully"
}

func (d Descriptor) updatedMessage() string {
	return d.displayName() + " updated successfully"
}

func (d Descriptor) deletedMessage() string {
	return d.displayName() + " deleted successfully"
}

func (d Descriptor) notFoundMessage() string {
	return d.displayName() + " not found"
}

// humanize turns a collection handle into an entity name:
// "subCategories" becomes "Sub category".
func humanize(collection string) string {
	name := collection
	switch {
	case strings.HasSuffix(name, "ies"):
		name = strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s"):
		name = strings.TrimSuffix(name, "s")
	}

	words := splitCamelCase(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	out := strings.Join(words, " ")
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}

func splitCamelCase(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}
