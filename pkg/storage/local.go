package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return "", err
	}

	key := uuid.NewString() + extFor(contentType)
	if err := os.WriteFile(filepath.Join(l.BaseDir, key), data, 0o644); err != nil {
		return "", err
	}

	return l.URLPrefix + "/" + key, nil
}

func (l *Local) Delete(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, l.URLPrefix+"/") {
		return fmt.Errorf("invalid file URL: prefix mismatch")
	}
	key := filepath.Base(strings.TrimPrefix(fileURL, l.URLPrefix+"/"))
	err := os.Remove(filepath.Join(l.BaseDir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
