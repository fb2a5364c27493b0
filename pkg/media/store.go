package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore keeps uploaded post media as flat files and hands out URLs
// under BaseURL for the static file server to resolve.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &DiskStore{Dir: dir, BaseURL: baseURL}, nil
}

// Save writes the file under a generated name and returns its public URL.
func (s *DiskStore) Save(origName string, src io.Reader) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(origName))

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}

	_, err = io.Copy(dst, src)
	closeErr := dst.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}

	return s.BaseURL + name, nil
}

// Remove deletes the file behind a URL previously returned by Save.
func (s *DiskStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.BaseURL) {
		return fmt.Errorf("unknown media url: %v", url)
	}

	name := strings.TrimPrefix(url, s.BaseURL)
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("unknown media url: %v", url)
	}

	return os.Remove(filepath.Join(s.Dir, name))
}
