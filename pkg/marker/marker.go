// Package marker implements the note-field tag protocol that drives mirroring.
//
// A transaction opts into mirroring by carrying the trigger tag (default
// "#shared") in its notes. Entries created by the daemon itself carry a
// processed marker ("#auto" for Actual-side mirrors, "#spliit" for mirrors of
// Spliit expenses) so they are never picked up again on a later poll.
package marker

import (
	"fmt"
	"strings"
)

const (
	// DefaultTriggerTag marks a transaction as shared.
	DefaultTriggerTag = "#shared"

	// AutoTag marks a deposit mirror created from an Actual transaction.
	AutoTag = "#auto"

	// SpliitTag marks a transaction mirrored from a Spliit expense.
	SpliitTag = "#spliit"
)

// HasTrigger reports whether notes contain the trigger tag as a whitespace
// separated token. Substring hits inside longer tags ("#sharedxyz") don't count.
func HasTrigger(notes, triggerTag string) bool {
	if triggerTag == "" {
		triggerTag = DefaultTriggerTag
	}
	return hasToken(notes, triggerTag)
}

// HasProcessedMarker reports whether notes carry one of the markers the daemon
// writes into entries it creates. Such entries must never be mirrored again.
func HasProcessedMarker(notes string) bool {
	return hasToken(notes, AutoTag) || hasToken(notes, SpliitTag)
}

// BuildMirrorNotes returns the notes for a deposit mirror of a shared Actual
// transaction. The same string is used when searching for an existing mirror,
// so it must be deterministic for a given title.
func BuildMirrorNotes(originalTitle string) string {
	title := strings.TrimSpace(originalTitle)
	if title == "" {
		title = "Unknown payee"
	}
	return fmt.Sprintf("%s %s", title, AutoTag)
}

// BuildProvenanceNotes returns the notes for a transaction mirrored from a
// Spliit expense, recording who paid.
func BuildProvenanceNotes(title, payerName string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		t = "Unknown expense"
	}
	p := strings.TrimSpace(payerName)
	if p == "" {
		p = "Unknown"
	}
	return fmt.Sprintf("%s (paid by %s) %s", t, p, SpliitTag)
}

// ParseProvenance extracts the title and payer name from notes produced by
// BuildProvenanceNotes. ok is false when notes don't match the signature.
func ParseProvenance(notes string) (title, payerName string, ok bool) {
	trimmed := strings.TrimSpace(notes)
	if !strings.HasSuffix(trimmed, SpliitTag) {
		return "", "", false
	}
	body := strings.TrimSpace(strings.TrimSuffix(trimmed, SpliitTag))
	if !strings.HasSuffix(body, ")") {
		return "", "", false
	}
	idx := strings.LastIndex(body, "(paid by ")
	if idx < 0 {
		return "", "", false
	}
	title = strings.TrimSpace(body[:idx])
	payerName = strings.TrimSpace(strings.TrimSuffix(body[idx+len("(paid by "):], ")"))
	if title == "" || payerName == "" {
		return "", "", false
	}
	return title, payerName, true
}

func hasToken(notes, tag string) bool {
	for _, field := range strings.Fields(notes) {
		if field == tag {
			return true
		}
	}
	return false
}
