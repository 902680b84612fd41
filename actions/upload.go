package actions

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"learnhub/authz"

	"github.com/google/uuid"
)

const maxUploadSize = 200 << 20

var uploadKinds = map[string]bool{"thumbnail": true, "video": true, "attachment": true}

type UploadInput struct {
	Kind        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploaded struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadFile stores an instructor's file under <kind>/<uuid><ext>
func (a *Actions) UploadFile(ctx context.Context, sess *authz.Session, in UploadInput) Result {
	return run("upload file", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !user.IsInstructor() {
			return nil, denied("upload files")
		}
		if !uploadKinds[in.Kind] {
			return nil, fail(Validation, "Invalid upload kind %q", in.Kind)
		}
		if in.Body == nil || in.Size <= 0 {
			return nil, fail(Validation, "File is required")
		}
		if in.Size > maxUploadSize {
			return nil, fail(Validation, "File is too large")
		}
		if a.store == nil {
			return nil, fail(Persistence, "File storage is not configured")
		}

		key := in.Kind + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(in.Filename))
		url, err := a.store.Put(ctx, key, in.Body, in.Size, in.ContentType)
		if err != nil {
			return nil, err
		}
		return Uploaded{URL: url, Key: key}, nil
	})
}
