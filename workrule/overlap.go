/*
overlap.go - Membership period overlap validation

PURPOSE:
  Enforces the invariant that one user's work rules never have ambiguous,
  overlapping effective date ranges. Two closed ranges [s1,e1] and [s2,e2]
  overlap iff s1 <= e2 && s2 <= e1; shared boundary days count as overlap,
  so a rule ending June 30 conflicts with one starting June 30.

USAGE:
  Registration checks the candidate against ALL of the user's rules.
  Update runs the same check excluding the rule being updated, by ID.
*/
package workrule

// HasOverlap reports whether the candidate period overlaps any of the
// existing periods.
func HasOverlap(existing []MembershipPeriod, candidate MembershipPeriod) bool {
	for _, p := range existing {
		if p.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// findOverlap returns the first rule whose membership overlaps the
// candidate, skipping the rule identified by excludeID (empty string
// excludes nothing).
func findOverlap(rules []WorkRule, candidate MembershipPeriod, excludeID string) *WorkRule {
	for i := range rules {
		if excludeID != "" && rules[i].ID == excludeID {
			continue
		}
		if rules[i].Membership.Overlaps(candidate) {
			return &rules[i]
		}
	}
	return nil
}
