// Package spam holds the heuristic content filter applied to submissions
// after validation. Matches are reported to the caller as a generic
// rejection so the rules themselves stay undisclosed.
package spam

import "strings"

// Disposable or obviously fake email patterns. Matched as substrings of the
// lower-cased email address.
var disposableEmailPatterns = []string{
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"tempmail",
	"throwaway",
	"example.com",
	"test@test",
}

var promoKeywords = []string{
	"viagra",
	"casino",
	"lottery",
	"bitcoin",
	"crypto invest",
	"free money",
	"click here",
	"http://",
	"https://",
}

const maxRepeatRun = 7

// Suspicious reports whether the submission content trips any heuristic:
// empty-after-trim content, a long run of one repeated character, a
// disposable email pattern, or a promotional keyword.
func Suspicious(fullName, email, address string) bool {
	content := strings.TrimSpace(fullName + " " + email + " " + address)
	if content == "" {
		return true
	}

	if hasLongRun(content, maxRepeatRun) {
		return true
	}

	lowerEmail := strings.ToLower(email)
	for _, p := range disposableEmailPatterns {
		if strings.Contains(lowerEmail, p) {
			return true
		}
	}

	lowerContent := strings.ToLower(content)
	for _, kw := range promoKeywords {
		if strings.Contains(lowerContent, kw) {
			return true
		}
	}

	return false
}

// hasLongRun reports whether s contains more than max consecutive copies of
// the same rune.
func hasLongRun(s string, max int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run > max {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
