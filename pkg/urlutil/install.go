package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// GatekeeperInstallCommand builds the kubectl commands that install a
// Gatekeeper policy straight from its repository. repoURL points at the
// directory holding the policies; the repository is the URL minus its last
// path segment. Only the first sample is applied.
func GatekeeperInstallCommand(repoURL, relativePath string, samples []string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid repository url %q", repoURL)
	}
	segments := strings.Split(u.EscapedPath(), "/")
	last := segments[len(segments)-1]
	cloneURL := u.Scheme + "://" + u.Host + strings.Join(segments[:len(segments)-1], "/")

	var b strings.Builder
	fmt.Fprintf(&b, "git clone %s\n", cloneURL)
	fmt.Fprintf(&b, "cd %s%s\n", last, relativePath)
	b.WriteString("kubectl apply -f template.yaml\n")
	if len(samples) > 0 {
		fmt.Fprintf(&b, "kubectl apply -f samples/%s\n", samples[0])
	}
	return b.String(), nil
}
