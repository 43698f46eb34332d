package chunk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SplitFile cuts the artifact at path into the planned byte ranges,
// writing one file per part into dir. Part files keep the source
// extension so the transport recognizes the media type.
func SplitFile(path string, parts []Part, dir string) ([]string, error) {
	if len(parts) == 1 {
		return []string{path}, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := filepath.Ext(path)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := filepath.Join(dir, fmt.Sprintf("chunk_%d%s", part.Number, ext))
		if err := writePart(src, name, part); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func writePart(src *os.File, name string, part Part) error {
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := src.Seek(part.Offset, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.CopyN(dst, src, part.Size); err != nil {
		return err
	}
	return dst.Close()
}
