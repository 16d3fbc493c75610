package docbuild

import (
	"fmt"
	"os"
	"path/filepath"
)

const redirectPage = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
	<head>
		<meta http-equiv="Content-Type" content="text/xhtml;charset=UTF-8"/>
		<noscript><meta http-equiv="refresh" content="5; url=%[1]s"></noscript>
		<title>AJA NTV2 SDK %[2]s Documentation</title>
	</head>
	<body onload="window.location = '%[1]s'">
		<h1>AJA NTV2 SDK %[2]s for %[3]s</h1>
		<h2>Redirecting to %[1]s...</h2>
	</body>
</html>
`

// RedirectPage renders the page that sends readers of a platform's version
// on to the shared documentation URL.
func RedirectPage(platform string, v Version, destURL string) string {
	return fmt.Sprintf(redirectPage, destURL, v.Display(), platform)
}

// RedirectFile is the page's file name for v.
func RedirectFile(v Version) string { return v.Folder() + ".html" }

// WriteRedirect writes the page into dir and returns its file name.
func WriteRedirect(dir, platform string, v Version, destURL string) (string, error) {
	name := RedirectFile(v)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(RedirectPage(platform, v, destURL)), 0o644); err != nil {
		return "", err
	}
	return name, nil
}
