package mailcheck

import (
	"strings"

	"mailprobe/internal/email"
)

// DeleteAllMatching removes every message whose raw, undecoded subject
// contains subject and returns their references in mailbox order. Subjects
// sent as encoded-words only match in their encoded form here; see
// DeleteAllMatchingDecoded.
func (r *Resolver) DeleteAllMatching(subject string) ([]Ref, error) {
	return r.deleteWhere(func(raw string) bool {
		return strings.Contains(raw, subject)
	})
}

// DeleteAllMatchingDecoded is DeleteAllMatching with the same subject
// decoding as Search.
func (r *Resolver) DeleteAllMatchingDecoded(subject string) ([]Ref, error) {
	return r.deleteWhere(func(raw string) bool {
		return strings.Contains(email.DecodeSubject(raw), subject)
	})
}

// deleteWhere collects all matches before removing any, so sequence
// numbers cannot shift during the scan. The returned Refs are stale once
// anything was removed.
func (r *Resolver) deleteWhere(match func(rawSubject string) bool) ([]Ref, error) {
	mbox, err := r.Session.Get(true)
	if err != nil {
		return nil, err
	}
	entries, err := mbox.List()
	if err != nil {
		return nil, err
	}

	var refs []Ref
	for _, entry := range entries {
		if match(entry.RawSubject) {
			refs = append(refs, r.ref(entry.Seq))
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	for _, ref := range refs {
		if err := mbox.Remove(ref.Seq); err != nil {
			return nil, err
		}
	}
	if err := r.Session.expunge(); err != nil {
		return nil, err
	}
	r.logger().Debug("mails deleted", "count", len(refs))
	return refs, nil
}
