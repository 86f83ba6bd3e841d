// Package validate checks imported entities for broken media and source bookkeeping.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"encounterport/internal/datafs"
	"encounterport/internal/store"
	"encounterport/internal/target"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeBrokenMedia        = "broken_media"
	codeMissingSourceRef   = "missing_source_ref"
	codeDuplicateSourceRef = "duplicate_source_ref"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     target.Kind
	Entity   string
	ID       string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() int   { return r.count(SeverityError) }
func (r *Report) Warnings() int { return r.count(SeverityWarn) }

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Lister is the part of a store the validator reads.
type Lister interface {
	ListEntitiesWithData(ctx context.Context, f store.Filter) ([]store.Entity, error)
}

// MediaChecker reports whether a data path exists.
type MediaChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

var filesRefPattern = regexp.MustCompile(`/files/data/[^"'\s<>()?#]+`)

// Run validates every stored entity. Entities without a source reference and entities
// sharing one source id are warnings; a /files/data/ reference that does not exist is an error.
func Run(ctx context.Context, entities Lister, media MediaChecker) (*Report, error) {
	if entities == nil {
		return nil, fmt.Errorf("store is required")
	}
	if media == nil {
		return nil, fmt.Errorf("media checker is required")
	}

	list, err := entities.ListEntitiesWithData(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	issues := make([]Issue, 0)
	bySource := make(map[string][]store.EntitySummary)
	var order []string
	exists := make(map[string]bool)

	for _, e := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case e.SourceKind == "":
			issues = append(issues, issueFor(e.EntitySummary, SeverityWarn, codeMissingSourceRef, "entity has no source reference"))
		case e.SourceID != "":
			key := string(e.Kind) + "|" + e.SourceKind + "|" + e.SourceID
			if _, seen := bySource[key]; !seen {
				order = append(order, key)
			}
			bySource[key] = append(bySource[key], e.EntitySummary)
		}

		refs, err := mediaRefs(e.Data)
		if err != nil {
			return nil, fmt.Errorf("reading %s %s: %w", e.Kind, e.ID, err)
		}
		for _, ref := range refs {
			p := datafs.NormalizeDataPath(ref)
			ok, cached := exists[p]
			if !cached {
				found, err := media.Exists(ctx, p)
				if err != nil {
					issues = append(issues, issueFor(e.EntitySummary, SeverityError, codeBrokenMedia, fmt.Sprintf("media %s: %v", p, err)))
					continue
				}
				exists[p] = found
				ok = found
			}
			if !ok {
				issues = append(issues, issueFor(e.EntitySummary, SeverityError, codeBrokenMedia, "missing media: "+p))
			}
		}
	}

	for _, key := range order {
		group := bySource[key]
		if len(group) < 2 {
			continue
		}
		for _, s := range group {
			msg := fmt.Sprintf("source %s %s imported %d times", s.SourceKind, s.SourceID, len(group))
			issues = append(issues, issueFor(s, SeverityWarn, codeDuplicateSourceRef, msg))
		}
	}

	return &Report{Issues: issues}, nil
}

// mediaRefs collects the distinct /files/data/ references in a stored document, in
// first-seen order.
func mediaRefs(data json.RawMessage) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var strs []string
	collectStrings(doc, &strs)

	seen := make(map[string]bool)
	var refs []string
	for _, s := range strs {
		for _, m := range filesRefPattern.FindAllString(s, -1) {
			if !seen[m] {
				seen[m] = true
				refs = append(refs, m)
			}
		}
	}
	return refs, nil
}

func collectStrings(v any, out *[]string) {
	switch val := v.(type) {
	case string:
		*out = append(*out, val)
	case []any:
		for _, item := range val {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(val[k], out)
		}
	}
}

func issueFor(s store.EntitySummary, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Kind:     s.Kind,
		Entity:   s.Name,
		ID:       s.ID,
	}
}
