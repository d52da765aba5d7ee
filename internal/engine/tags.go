package engine

import "strings"

// MaxTags is the cap on tags per task, counted after normalization and
// deduplication.
const MaxTags = 10

// NormalizeTags canonicalizes free-text tag input. Each token is trimmed,
// lower-cased, and reduced to [a-z0-9-]: every other character becomes a
// hyphen, runs of hyphens collapse to one, and edge hyphens are dropped.
// Empty results are discarded and duplicates keep their first-seen
// position, so "Work" and "work" count once toward the limit.
func NormalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, token := range raw {
		tag := normalizeTag(token)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) > MaxTags {
		return nil, invalidf("tags", "too many tags: %d exceeds the limit of %d", len(tags), MaxTags)
	}
	return tags, nil
}

func normalizeTag(token string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(token)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
