package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of path-style requests the S3 driver sends.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	respond := func(status int, body string, hdr http.Header) (*http.Response, error) {
		if hdr == nil {
			hdr = http.Header{}
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: hdr, Request: req}, nil
	}

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, b.String(), http.Header{"Content-Type": {"application/xml"}})
	}

	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		return respond(http.StatusOK, "", http.Header{"ETag": {`"etag"`}})
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound,
				`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`,
				http.Header{"Content-Type": {"application/xml"}})
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Request: req, Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Content-Type":   {"application/yaml"},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}}, nil
	case http.MethodDelete:
		delete(f.objects, key)
		return respond(http.StatusNoContent, "", nil)
	}
	return respond(http.StatusNotImplemented, "", nil)
}

func newFakeS3Store(t *testing.T, fake *fakeS3) *S3 {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &S3{client: client, bucket: "brewlist"}
}

func TestS3GetListDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{
		"tables/malts.yaml": []byte("version: test"),
		"exports/one.csv":   []byte("a"),
	}}
	store := newFakeS3Store(t, fake)
	ctx := context.Background()
	assert.Equal(t, DriverS3, store.Driver())

	data, err := ReadAll(ctx, store, "tables/malts.yaml")
	require.NoError(t, err)
	assert.Equal(t, "version: test", string(data))

	_, _, err = store.Get(ctx, "tables/none.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	infos, err := store.List(ctx, "exports/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "exports/one.csv", infos[0].Key)

	ok, err := store.Delete(ctx, "exports/one.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, fake.objects, "exports/one.csv")
}

func TestS3Put(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newFakeS3Store(t, fake)

	info, err := store.Put(context.Background(), "exports/list.csv", strings.NewReader("Name,Amount"), PutOptions{ContentType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)
	assert.Contains(t, fake.objects, "exports/list.csv")
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
