package config

// DefaultTrustedSites biases web searches towards reputable domains per
// category. Lookup falls back to the general list for unknown categories.
var DefaultTrustedSites = map[string][]string{
	"cs": {
		"geeksforgeeks.org", "w3schools.com", "freecodecamp.org",
		"stackoverflow.com", "realpython.com", "tutorialspoint.com",
	},
	"math": {
		"khanacademy.org", "wolfram.com", "brilliant.org",
		"libretexts.org", "tutorial.math.lamar.edu",
	},
	"science": {
		"physicsclassroom.com", "hyperphysics.phy-astr.gsu.edu",
		"britannica.com", "nasa.gov", "cern.ch",
	},
	"general": {
		"britannica.com", "bbc.com", "investopedia.com",
	},
}

// defaultFallbackDomains are the deterministic deep-link substitutes served
// when live search fails. Each template takes the URL-escaped query.
var defaultFallbackDomains = []map[string]string{
	{
		"domain":   "khanacademy.org",
		"title":    "Learn '%s' on Khan Academy",
		"template": "https://www.khanacademy.org/search?page_search_query=%s",
	},
	{
		"domain":   "scholar.google.com",
		"title":    "Academic papers: %s",
		"template": "https://scholar.google.com/scholar?q=%s",
	},
}
