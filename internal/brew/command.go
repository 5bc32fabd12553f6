package brew

import (
	"regexp"
	"strings"
)

type commandRule struct {
	regex  *regexp.Regexp
	action string
}

// commandRules map typed or spoken phrases to control actions. Order
// matters: the first match wins.
var commandRules = []commandRule{
	{regexp.MustCompile(`(?i)^(start|go|begin|brew|let'?s go)$`), ActionStart},
	{regexp.MustCompile(`(?i)^(pause|hold( on)?|wait|brb|p)$`), ActionPause},
	{regexp.MustCompile(`(?i)^(resume|continue|unpause|back)$`), ActionResume},
	{regexp.MustCompile(`(?i)^(reset|restart|start over|again)$`), ActionReset},
}

// ParseCommand maps free text such as "hold on" or "start over" to a
// control action. ok is false when nothing matches.
func ParseCommand(input string) (action string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	for _, rule := range commandRules {
		if rule.regex.MatchString(trimmed) {
			return rule.action, true
		}
	}
	return "", false
}
