package source

import (
	"os"

	"go.lsp.dev/uri"
)

// ReadFiles reads each named file from disk and wraps it as a *File, or
// returns the first error encountered. Kept alongside NewFile (which takes
// already-loaded bytes) so callers that only have filenames, such as the
// command-line front end, don't need to hand-roll the os.ReadFile/uri.File
// wiring themselves.
func ReadFiles(filenames ...string) ([]*File, error) {
	files := make([]*File, len(filenames))

	for i, name := range filenames {
		contents, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}

		files[i] = NewFile(name, uri.File(name), contents)
	}

	return files, nil
}
