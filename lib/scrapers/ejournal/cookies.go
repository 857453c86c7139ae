package ejournal

import "strings"

// ParseCookieString parses a raw browser cookie dump of the form
// "key1=value1; key2=value2" into a name to value map. segments
// without a "=" are dropped rather than reported, since cookie
// dumps pasted out of browser extensions are rarely pristine.
func ParseCookieString(raw string) map[string]string {
	jar := map[string]string{}
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		key, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		jar[key] = strings.TrimSpace(value)
	}
	return jar
}
