package catalog

import (
	"regexp"
	"strings"
)

// RoleAuthor is the sentinel role assigned when an author token carries
// no parenthetical annotation. It is a permanent member of the global
// role set.
const RoleAuthor = "author"

var (
	// roleAnnotation matches a parenthetical contribution note such as
	// "(сост.)" or "(пер. с англ.)". Only lowercase Cyrillic interiors
	// count; capitalized parentheticals are surname disambiguations,
	// not roles, and stay part of the name.
	roleAnnotation = regexp.MustCompile(`\([а-я. \-]+\)`)

	roleTagStrip   = regexp.MustCompile(`[^а-я-]`)
	authorCharKeep = regexp.MustCompile(`[^A-Za-zА-Яа-яЁё ]`)
)

// NormalizeAuthors splits one record's raw author field into normalized
// mentions. Each mention's role is the tag derived from its annotation,
// or RoleAuthor when no annotation is present.
//
// roles collects every extracted non-sentinel tag, including tags whose
// token produced no usable name; those still belong in the global role
// set even though no mention is emitted for them.
func NormalizeAuthors(raw string) (mentions []AuthorMention, roles []string) {
	raw = strings.ReplaceAll(raw, "И др.", "")
	raw = strings.ReplaceAll(raw, "и др.", "")

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		role := RoleAuthor
		if annotation := roleAnnotation.FindString(token); annotation != "" {
			if tag := roleTag(annotation); tag != "" {
				role = tag
				roles = append(roles, tag)
			}
			token = strings.Replace(token, annotation, "", 1)
		}

		name := strings.TrimSpace(authorCharKeep.ReplaceAllString(token, ""))
		if name == "" {
			continue
		}
		mentions = append(mentions, AuthorMention{Author: name + ".", Role: role})
	}
	return mentions, roles
}

// roleTag reduces a parenthetical annotation to its canonical tag:
// "(пер. с англ.)" becomes "пер-с-англ".
func roleTag(annotation string) string {
	tag := strings.TrimSpace(annotation)
	tag = strings.Trim(tag, "()")
	tag = strings.TrimSpace(tag)
	tag = strings.ReplaceAll(tag, " ", "-")
	tag = roleTagStrip.ReplaceAllString(tag, "")
	return strings.Trim(tag, "-")
}
