package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ppv-marketplace/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway stores objects by path and answers HEAD with a cid header.
type fakeGateway struct {
	mu      sync.Mutex
	objects map[string]string
	cid     string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		g.objects[r.URL.Path] = string(body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := g.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if g.cid != "" {
			w.Header().Set("x-amz-meta-cid", g.cid)
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestPinner(t *testing.T, gw *fakeGateway, bucket string) *S3Pinner {
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "key", SecretAccessKey: "secret"}, nil
		}),
	})
	return NewS3PinnerWithClient(client, bucket)
}

func TestPinReturnsGatewayCID(t *testing.T) {
	gw := &fakeGateway{objects: map[string]string{}, cid: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"}
	p := newTestPinner(t, gw, "videos")

	cid, err := p.Pin(context.Background(), "clip.mp4", "video/mp4", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, gw.cid, cid)

	require.Len(t, gw.objects, 1)
	for key, body := range gw.objects {
		assert.True(t, strings.HasPrefix(key, "/videos/"))
		assert.True(t, strings.HasSuffix(key, "-clip.mp4"))
		assert.Equal(t, "frames", body)
	}
}

func TestPinWithoutCIDIsRejected(t *testing.T) {
	p := newTestPinner(t, &fakeGateway{objects: map[string]string{}}, "videos")
	_, err := p.Pin(context.Background(), "clip.mp4", "video/mp4", strings.NewReader("x"))
	assert.True(t, errors.HasCode(err, errors.CodeRejected))
}

func TestPinRequiresBucket(t *testing.T) {
	p := newTestPinner(t, &fakeGateway{objects: map[string]string{}}, "")
	_, err := p.Pin(context.Background(), "clip.mp4", "video/mp4", strings.NewReader("x"))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
