// Package static embeds the assets served under /static.
package static

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/packagehub/hub-web/pkg/checksum"
)

// Prefix is the URL path the assets are mounted on.
const Prefix = "/static"

//go:embed assets
var assets embed.FS

var fingerprints = sync.OnceValue(func() map[string]string {
	return computeFingerprints(files())
})

func files() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// FileSystem returns the embedded assets rooted at the assets directory.
func FileSystem() http.FileSystem {
	return http.FS(files())
}

// AssetURL returns the URL of an embedded asset with its content fingerprint
// as the v query parameter. Unknown names get a plain URL.
func AssetURL(name string) string {
	if fp, ok := fingerprints()[name]; ok {
		return Prefix + "/" + name + "?v=" + fp
	}
	return Prefix + "/" + name
}

func computeFingerprints(fsys fs.FS) map[string]string {
	out := map[string]string{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fp, err := checksum.Fingerprint(f, checksum.DefaultFingerprintLength)
		if err != nil {
			return err
		}
		out[path] = fp
		return nil
	})
	if err != nil {
		slog.Error("failed to fingerprint static assets", "error", err)
	}
	return out
}
