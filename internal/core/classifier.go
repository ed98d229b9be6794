package core

// classifier.go scores a parsed row against the resource type catalog.
//
// A row's secret-side fields are intersected with each candidate's secret
// schema properties. Candidates are visited in catalog order and only a
// strictly better score replaces the current best, so the first candidate
// in the catalog wins every tie.

// MatchKind is the outcome of classifying one row.
type MatchKind int

const (
	// MatchNone means no candidate shares a field with the row.
	MatchNone MatchKind = iota
	// MatchExact means every required property of the type is present.
	MatchExact
	// MatchPartial means the best type still misses required properties;
	// the secret payload may be reduced relative to the source.
	MatchPartial
	// MatchFixed means the format pinned the resource type.
	MatchFixed
	// MatchFallback means the default resource type was assigned.
	MatchFallback
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPartial:
		return "partial"
	case MatchFixed:
		return "fixed"
	case MatchFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Kind    MatchKind
	Type    ResourceType // Zero when Kind is MatchNone
	Score   int
	Missing int
}

// Classify picks the resource type that best fits the record fields.
//
// fields uses record vocabulary; secret_clear is compared as password.
// Secret-string-only types are never candidates.
func Classify(fields []string, candidates ResourceTypes) Classification {
	recordSet := make(map[string]struct{}, len(fields)+1)
	for _, f := range fields {
		if f == string(FieldSecretClear) {
			f = secretPropertyPassword
		}
		recordSet[f] = struct{}{}
	}

	var (
		exact, partial         Classification
		haveExact, havePartial bool
	)

	for _, candidate := range candidates {
		if candidate.IsSecretStringOnly() {
			continue
		}

		compare := recordSet
		if requiresTOTPAndDescription(candidate) {
			compare = withPassword(recordSet)
		}

		score, missing := scoreCandidate(compare, candidate.Definition.Secret)
		if score == 0 {
			continue
		}

		if missing == 0 && (!haveExact || score > exact.Score) {
			exact = Classification{Kind: MatchExact, Type: candidate, Score: score}
			haveExact = true
		}
		if !havePartial || missing < partial.Missing {
			partial = Classification{Kind: MatchPartial, Type: candidate, Score: score, Missing: missing}
			havePartial = true
		}
	}

	switch {
	case haveExact:
		return exact
	case havePartial:
		return partial
	default:
		return Classification{Kind: MatchNone}
	}
}

// scoreCandidate counts shared properties and missing required ones.
func scoreCandidate(recordSet map[string]struct{}, schema SecretSchema) (score, missing int) {
	for _, p := range uniqueStrings(schema.Properties) {
		if _, ok := recordSet[p]; ok {
			score++
		}
	}
	for _, r := range uniqueStrings(schema.Required) {
		if _, ok := recordSet[r]; !ok {
			missing++
		}
	}
	return score, missing
}

// requiresTOTPAndDescription reports whether both totp and description are
// required by the candidate. Such schemas get password imputed so formats
// that always emit the three together can reach them.
func requiresTOTPAndDescription(t ResourceType) bool {
	var totp, description bool
	for _, r := range t.Definition.Secret.Required {
		switch r {
		case secretPropertyTOTP:
			totp = true
		case secretPropertyDescription:
			description = true
		}
	}
	return totp && description
}

func withPassword(set map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(set)+1)
	for k := range set {
		out[k] = struct{}{}
	}
	out[secretPropertyPassword] = struct{}{}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
