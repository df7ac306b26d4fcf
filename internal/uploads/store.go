package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// Store keeps uploaded images on local disk under <dir>/images. Paths
// handed back are relative ("uploads/images/<uuid>.<ext>") so they can be
// served as-is from the static route and stored on the documents.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	err := os.MkdirAll(filepath.Join(dir, "images"), 0o755)

	if err != nil {
		return nil, err
	}

	return &Store{dir: dir}, nil
}

var allowedExts = map[string]string{
	".png":  ".png",
	".jpg":  ".jpg",
	".jpeg": ".jpeg",
}

// Save writes the uploaded image under a fresh uuid name and returns the
// relative path to persist. The original filename only contributes its
// extension.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext, ok := allowedExts[strings.ToLower(filepath.Ext(originalName))]

	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	rel := path.Join(filepath.Base(s.dir), "images", name)

	f, err := os.Create(filepath.Join(s.dir, "images", name))

	if err != nil {
		return "", err
	}

	_, err = io.Copy(f, r)

	closeErr := f.Close()

	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}

	return rel, nil
}

// Remove deletes a previously saved image. The path must stay inside the
// store; anything else is rejected rather than resolved.
func (s *Store) Remove(rel string) error {
	clean := filepath.Clean(rel)

	base := filepath.Base(s.dir)

	if !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the uploads dir", rel)
	}

	full := filepath.Join(filepath.Dir(s.dir), clean)

	return os.Remove(full)
}

// Dir is the on-disk root, used to mount the static file route.
func (s *Store) Dir() string {
	return s.dir
}
