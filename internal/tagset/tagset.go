// Package tagset derives the distinct tags in use across a set of tasks and
// handles the free-text tag field of the task forms.
package tagset

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yukikurage/todo-list/internal/models"
)

// Distinct flattens lists and keeps the first occurrence of every value, in
// first-occurrence order. Which list a value came from is not retained.
func Distinct[T comparable](lists [][]T) []T {
	size := 0
	for _, list := range lists {
		size += len(list)
	}

	seen := make(map[T]struct{}, size)
	result := make([]T, 0, size)
	for _, list := range lists {
		for _, v := range list {
			if _, exists := seen[v]; exists {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}

	return result
}

// DistinctTags returns every tag attached to tasks once, keyed by tag ID.
// Tags must be preloaded on the tasks.
func DistinctTags(tasks []models.Task) []models.Tag {
	lists := make([][]uint64, len(tasks))
	byID := make(map[uint64]models.Tag)
	for i, task := range tasks {
		ids := make([]uint64, len(task.Tags))
		for j, tag := range task.Tags {
			ids[j] = tag.ID
			byID[tag.ID] = tag
		}
		lists[i] = ids
	}

	ids := Distinct(lists)
	tags := make([]models.Tag, len(ids))
	for i, id := range ids {
		tags[i] = byID[id]
	}
	return tags
}

// Parse splits the tag field of a task form into tag names. Names are
// separated by commas, or by whitespace when the input has no comma. The
// result is trimmed, de-duplicated and sorted.
func Parse(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return []string{}
	}

	var parts []string
	if strings.Contains(input, ",") {
		parts = strings.Split(input, ",")
	} else {
		parts = strings.Fields(input)
	}

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			names = append(names, part)
		}
	}

	names = Distinct([][]string{names})
	sort.Strings(names)
	return names
}

// Join renders tag names back into the form field representation.
func Join(names []string) string {
	return strings.Join(names, ", ")
}

var nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify derives a URL-safe slug from a tag name: diacritics are stripped,
// letters are lower-cased and runs of other characters collapse into "-".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}
