package deception

import "strings"

// decoyPaths are advertised as Disallow entries in robots.txt. Nothing
// real lives under them, so any visit is a crawler that read the file and
// went looking anyway.
var decoyPaths = []string{
	"/wp-admin",
	"/wp-login.php",
	"/phpmyadmin",
	"/admin-backup",
	"/old-site",
	"/staging",
	"/.git",
	"/.env",
	"/.aws",
	"/backup",
	"/config.php",
	"/cgi-bin",
}

func DecoyPaths() []string {
	out := make([]string, len(decoyPaths))
	copy(out, decoyPaths)
	return out
}

// IsDecoyPath reports whether the request path falls under a robots.txt
// decoy entry.
func IsDecoyPath(path string) bool {
	lowered := strings.ToLower(path)
	for _, decoy := range decoyPaths {
		if lowered == decoy || strings.HasPrefix(lowered, decoy+"/") {
			return true
		}
	}
	return false
}
