package filesystem

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// LocalResolver reads share resources from the local filesystem.
// References are absolute paths or file:// URIs.
type LocalResolver struct{}

// NewLocalResolver creates a resolver for local files
func NewLocalResolver() *LocalResolver {
	return &LocalResolver{}
}

// Open reads the display name, MIME type and full content of ref
func (r *LocalResolver) Open(ctx context.Context, ref string) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := localPath(ref)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", p)
	}

	content, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(p)
	return &Resource{
		Name:     name,
		MIMEType: DetectMIME(name, content),
		Content:  content,
	}, nil
}

// DetectMIME prefers the extension mapping and falls back to content sniffing
func DetectMIME(name string, content []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return t
		}
	}
	return mimetype.Detect(content).String()
}

func localPath(ref string) (string, error) {
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid resource uri %q: %w", ref, err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("remote resource %q not supported", ref)
		}
		return filepath.FromSlash(u.Path), nil
	}
	if ref == "" {
		return "", fmt.Errorf("empty resource reference")
	}
	return filepath.Clean(ref), nil
}
