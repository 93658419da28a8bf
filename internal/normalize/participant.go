package normalize

import (
	"regexp"
	"strings"
)

// bracketRE matches "Name [email]" and "Name <email>" participant forms.
var bracketRE = regexp.MustCompile(`^(.+?)\s*[\[<]([^\]>]+)[\]>]$`)

// automatedMarkers are substrings that identify machine senders.
var automatedMarkers = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"automated", "system", "mailer-daemon", "postmaster",
	"notification", "alert", "info@", "support@",
	"calendar", "events@", "newsletter",
}

// ParseParticipant splits an email participant string into a display
// name and a lowercase address. Accepted forms: "Name [email]",
// "Name <email>", a bare address (name derived from the local part),
// or a bare name.
func ParseParticipant(raw string) (name, email string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if m := bracketRE.FindStringSubmatch(raw); m != nil {
		return Clean(m[1]), strings.ToLower(strings.TrimSpace(m[2]))
	}
	if strings.Contains(raw, "@") {
		email = strings.ToLower(strings.TrimSpace(raw))
		local, _, _ := strings.Cut(email, "@")
		local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
		return titleWords(local), email
	}
	return Clean(raw), ""
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsAutomatedSender reports whether a participant looks like a system
// or bulk sender rather than a person.
func IsAutomatedSender(name, email string) bool {
	combined := strings.ToLower(name + " " + email)
	for _, marker := range automatedMarkers {
		if strings.Contains(combined, marker) {
			return true
		}
	}
	return false
}

// NormalizeParticipant resolves a participant to a canonical entity.
// The address is consulted first, then the cleaned name.
func NormalizeParticipant(name, email string, aliases *AliasTable) (string, bool) {
	if email != "" && aliases != nil {
		if canonical, ok := aliases.ResolveEmail(email); ok {
			return canonical, true
		}
	}
	return Normalize(name, aliases)
}
