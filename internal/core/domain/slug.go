package domain

// Slugify derives a URL slug from a name: lower-case ascii letters and
// digits joined by single dashes, at most 60 bytes.
func Slugify(name string) string {
	slug := ""
	lastDash := true
	for _, ch := range name {
		switch {
		case (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9'):
			slug += string(ch)
			lastDash = false
		case ch >= 'A' && ch <= 'Z':
			slug += string(ch + 32)
			lastDash = false
		case ch == ' ' || ch == '_' || ch == '-' || ch == '.':
			if !lastDash {
				slug += "-"
				lastDash = true
			}
		}
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	for len(slug) > 0 && slug[len(slug)-1] == '-' {
		slug = slug[:len(slug)-1]
	}
	return slug
}
