package model

// TopDrivers removes duplicate driver strings, keeping first occurrences in
// order, and truncates the result to limit entries.
func TopDrivers(drivers []string, limit int) []string {
	seen := make(map[string]bool, len(drivers))
	out := make([]string, 0, min(len(drivers), limit))
	for _, d := range drivers {
		if len(out) == limit {
			break
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// MaxDrivers is the number of drivers any scorer reports.
const MaxDrivers = 3
