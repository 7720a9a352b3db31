package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/baladhub/balad-backend/pkg/apierr"
	"github.com/baladhub/balad-backend/pkg/httputil"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 32 << 20

// ObjectStore is the storage surface the relay uploads into. storage.S3Client
// satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// Relay moves uploaded files from multipart requests into object storage and
// rewrites the request body as JSON so the generic handlers downstream never
// see multipart at all.
type Relay struct {
	store ObjectStore
	log   logrus.FieldLogger

	// Uploads counts processed uploads by kind and outcome. Optional; the
	// server wires it to the shared registry.
	Uploads *prometheus.CounterVec
}

// NewRelay wires the relay to its object store.
func NewRelay(store ObjectStore, log logrus.FieldLogger) *Relay {
	return &Relay{store: store, log: log}
}

func (rl *Relay) countUpload(kind, outcome string) {
	if rl.Uploads != nil {
		rl.Uploads.WithLabelValues(kind, outcome).Inc()
	}
}

// ImageOptions configures an image upload route.
type ImageOptions struct {
	// Folder and Prefix namespace the object key.
	Folder string
	Prefix string
	// Field is the multipart field carrying the file(s) and the JSON key the
	// resulting URL is written under.
	Field string
	// Required rejects requests that carry no file for Field.
	Required bool
	// Multiple accepts several files and writes back an array of URLs in
	// input order.
	Multiple bool
	// FullQuality re-encodes at 100 instead of the default 80.
	FullQuality bool
}

// AudioOptions configures an audio upload route. Audio is stored unmodified;
// the measured duration in seconds is written back under "duration".
type AudioOptions struct {
	Folder   string
	Prefix   string
	Field    string
	Required bool
}

// UploadImage returns middleware that uploads the request's image file(s)
// and replaces the body with JSON carrying the stored URL under the field
// key. Non-multipart requests pass through untouched.
func (rl *Relay) UploadImage(opts ImageOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
				httputil.WriteAPIError(w, apierr.Validation("invalid multipart body"))
				return
			}

			files := r.MultipartForm.File[opts.Field]
			if len(files) == 0 {
				if opts.Required {
					httputil.WriteAPIError(w, apierr.Validation(opts.Field+" is required"))
					return
				}
				rewriteBody(r, nil)
				next.ServeHTTP(w, r)
				return
			}
			if !opts.Multiple {
				files = files[:1]
			}

			for _, fh := range files {
				if !allowedImage(fh.Header.Get("Content-Type")) {
					rl.countUpload("image", "rejected")
					httputil.WriteAPIError(w, apierr.Validation("invalid file type: "+fh.Filename))
					return
				}
			}

			urls := make([]string, len(files))
			g, ctx := errgroup.WithContext(r.Context())
			for i, fh := range files {
				g.Go(func() error {
					data, err := readPart(fh)
					if err != nil {
						return err
					}
					encoded, err := ReencodeImage(data, opts.FullQuality)
					if err != nil {
						return apierr.Validation("invalid image file: " + fh.Filename)
					}
					url, err := rl.store.Put(ctx, rl.imageKey(opts), bytes.NewReader(encoded), "image/jpeg")
					if err != nil {
						return err
					}
					urls[i] = url
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				rl.countUpload("image", "error")
				rl.log.WithError(err).WithField("field", opts.Field).Error("image upload failed")
				httputil.WriteAPIError(w, err)
				return
			}
			rl.countUpload("image", "ok")

			if opts.Multiple {
				rewriteBody(r, map[string]any{opts.Field: urls})
			} else {
				rewriteBody(r, map[string]any{opts.Field: urls[0]})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UploadAudio returns middleware that measures the upload's duration, stores
// the bytes unmodified, and writes back both the URL and the duration.
func (rl *Relay) UploadAudio(opts AudioOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
				httputil.WriteAPIError(w, apierr.Validation("invalid multipart body"))
				return
			}

			files := r.MultipartForm.File[opts.Field]
			if len(files) == 0 {
				if opts.Required {
					httputil.WriteAPIError(w, apierr.Validation(opts.Field+" is required"))
					return
				}
				rewriteBody(r, nil)
				next.ServeHTTP(w, r)
				return
			}
			fh := files[0]

			contentType := fh.Header.Get("Content-Type")
			if !allowedAudio(contentType) {
				rl.countUpload("audio", "rejected")
				httputil.WriteAPIError(w, apierr.Validation("invalid file type: "+fh.Filename))
				return
			}

			data, err := readPart(fh)
			if err != nil {
				httputil.WriteAPIError(w, err)
				return
			}
			duration, err := AudioDuration(data, contentType)
			if err != nil {
				rl.countUpload("audio", "rejected")
				httputil.WriteAPIError(w, apierr.Validation("could not read audio file: "+fh.Filename))
				return
			}

			key := rl.audioKey(opts, fh.Filename)
			url, err := rl.store.Put(r.Context(), key, bytes.NewReader(data), normalizeMIME(contentType))
			if err != nil {
				rl.countUpload("audio", "error")
				rl.log.WithError(err).WithField("field", opts.Field).Error("audio upload failed")
				httputil.WriteAPIError(w, err)
				return
			}
			rl.countUpload("audio", "ok")

			rewriteBody(r, map[string]any{opts.Field: url, "duration": duration})
			next.ServeHTTP(w, r)
		})
	}
}

// DeleteByURL removes a previously stored object, best effort. Failures and
// foreign URLs are logged and swallowed; callers never see them.
func (rl *Relay) DeleteByURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, ok := rl.store.KeyFromURL(url)
	if !ok {
		rl.log.WithField("url", url).Warn("skipping delete of unrecognized media url")
		return
	}
	if err := rl.store.Delete(ctx, key); err != nil {
		rl.log.WithError(err).WithField("key", key).Warn("media delete failed")
	}
}

func (rl *Relay) imageKey(opts ImageOptions) string {
	return fmt.Sprintf("%s/%s-%s-%d.jpg", opts.Folder, opts.Prefix, uuid.NewString(), time.Now().UnixMilli())
}

func (rl *Relay) audioKey(opts AudioOptions, originalName string) string {
	return fmt.Sprintf("%s/%s-%s-%d-%s", opts.Folder, opts.Prefix, uuid.NewString(), time.Now().UnixMilli(), originalName)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// rewriteBody replaces the multipart request body with a JSON document built
// from the form's value fields plus the uploaded results, so downstream
// handlers parse one body format only.
func rewriteBody(r *http.Request, uploaded map[string]any) {
	body := map[string]any{}
	if r.MultipartForm != nil {
		for k, v := range r.MultipartForm.Value {
			if len(v) == 0 {
				continue
			}
			body[k] = coerceFormValue(v[0])
		}
	}
	for k, v := range uploaded {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte("{}")
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	r.ContentLength = int64(len(raw))
	r.Header.Set("Content-Type", "application/json")
}

// coerceFormValue keeps JSON-looking form values typed: clients send nested
// objects and booleans as JSON strings inside multipart fields.
func coerceFormValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' ||
		trimmed == "true" || trimmed == "false" || trimmed == "null") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}
