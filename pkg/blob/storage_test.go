package blob

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	puts    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{objects: make(map[string][]byte)}
}

func (f *fakeRemote) Put(_ context.Context, key string, data []byte) (RemoteLocator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return RemoteLocator{}, f.putErr
	}
	f.objects[key] = append([]byte(nil), data...)
	return RemoteLocator{Bucket: "mocks", Key: key}, nil
}

func (f *fakeRemote) Get(_ context.Context, loc RemoteLocator) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[loc.Key]
	if !ok {
		return nil, ErrNotExist
	}
	return data, nil
}

func newMemStorage(opts ...Option) (*Storage, afero.Fs) {
	fsys := afero.NewMemMapFs()
	return New(NewLocalBackendFs(fsys, "uploads"), opts...), fsys
}

func TestIngest_LocalRoundTrip(t *testing.T) {
	s, fsys := newMemStorage()
	ctx := context.Background()

	loc, err := s.Ingest(ctx, []byte("hello"), "report.pdf")
	require.NoError(t, err)

	local, ok := loc.(LocalLocator)
	require.True(t, ok, "expected LocalLocator, got %T", loc)
	assert.True(t, strings.HasPrefix(local.Path, "uploads/"))
	assert.True(t, strings.HasSuffix(local.Path, "_report.pdf"))

	exists, err := afero.Exists(fsys, local.Path)
	require.NoError(t, err)
	assert.True(t, exists)

	out := s.Retrieve(ctx, loc)
	stream, ok := out.(Stream)
	require.True(t, ok, "expected Stream, got %T", out)
	assert.Equal(t, []byte("hello"), stream.Data)
	assert.Equal(t, local.Filename(), stream.Filename)
}

func TestIngest_SameNameTwice(t *testing.T) {
	s, _ := newMemStorage()
	ctx := context.Background()

	a, err := s.Ingest(ctx, []byte("a"), "same.txt")
	require.NoError(t, err)
	b, err := s.Ingest(ctx, []byte("b"), "same.txt")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, []byte("a"), s.Retrieve(ctx, a).(Stream).Data)
	assert.Equal(t, []byte("b"), s.Retrieve(ctx, b).(Stream).Data)
}

func TestIngest_ConcurrentUploads(t *testing.T) {
	s, _ := newMemStorage()
	ctx := context.Background()

	const n = 20
	locs := make([]Locator, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc, err := s.Ingest(ctx, []byte{byte(i)}, "data.bin")
			assert.NoError(t, err)
			locs[i] = loc
		}(i)
	}
	wg.Wait()

	seen := make(map[Locator]bool)
	for i, loc := range locs {
		require.NotNil(t, loc)
		assert.False(t, seen[loc], "duplicate locator %v", loc)
		seen[loc] = true
		assert.Equal(t, []byte{byte(i)}, s.Retrieve(ctx, loc).(Stream).Data)
	}
}

func TestIngest_Remote(t *testing.T) {
	remote := newFakeRemote()
	s, fsys := newMemStorage(WithRemote(remote))
	ctx := context.Background()

	loc, err := s.Ingest(ctx, []byte("remote bytes"), "img.png")
	require.NoError(t, err)

	r, ok := loc.(RemoteLocator)
	require.True(t, ok, "expected RemoteLocator, got %T", loc)
	assert.Equal(t, "mocks", r.Bucket)
	assert.True(t, strings.HasSuffix(r.Key, "_img.png"))

	exists, _ := afero.DirExists(fsys, "uploads")
	assert.False(t, exists, "nothing should be written locally")

	stream, ok := s.Retrieve(ctx, loc).(Stream)
	require.True(t, ok)
	assert.Equal(t, []byte("remote bytes"), stream.Data)
	assert.Equal(t, r.Key, stream.Filename)
}

func TestIngest_RemoteFailureFallsBackToLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.putErr = errors.New("connection refused")
	s, _ := newMemStorage(WithRemote(remote))
	ctx := context.Background()

	loc, err := s.Ingest(ctx, []byte("fallback"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.puts)

	local, ok := loc.(LocalLocator)
	require.True(t, ok, "expected LocalLocator, got %T", loc)
	assert.True(t, strings.HasSuffix(local.Path, "_notes.txt"))

	stream, ok := s.Retrieve(ctx, loc).(Stream)
	require.True(t, ok)
	assert.Equal(t, []byte("fallback"), stream.Data)
}

func TestIngest_LocalFailure(t *testing.T) {
	s := New(NewLocalBackendFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "uploads"))
	_, err := s.Ingest(context.Background(), []byte("x"), "x.txt")
	assert.Error(t, err)
}

func TestRetrieve_Redirect(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		key  string
		want string
	}{
		{
			name: "cdn domain",
			opts: []Option{WithCDNDomain("cdn.example.com")},
			key:  "abc_file.txt",
			want: "https://cdn.example.com/abc_file.txt",
		},
		{
			name: "cdn domain with slashes",
			opts: []Option{WithCDNDomain("cdn.example.com/")},
			key:  "/abc_file.txt",
			want: "https://cdn.example.com/abc_file.txt",
		},
		{
			name: "bucket url",
			opts: []Option{WithBucketURL("https://mocks.s3.amazonaws.com/")},
			key:  "abc_file.txt",
			want: "https://mocks.s3.amazonaws.com/abc_file.txt",
		},
		{
			name: "cdn wins over bucket url",
			opts: []Option{WithBucketURL("https://bucket.example.com"), WithCDNDomain("cdn.example.com")},
			key:  "k",
			want: "https://cdn.example.com/k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newMemStorage(tt.opts...)
			out := s.Retrieve(context.Background(), RemoteLocator{Bucket: "mocks", Key: tt.key})
			redirect, ok := out.(Redirect)
			require.True(t, ok, "expected Redirect, got %T", out)
			assert.Equal(t, tt.want, redirect.URL)
		})
	}
}

func TestRetrieve_LocalNotRedirected(t *testing.T) {
	s, _ := newMemStorage(WithCDNDomain("cdn.example.com"))
	ctx := context.Background()

	loc, err := s.Ingest(ctx, []byte("x"), "x.txt")
	require.NoError(t, err)
	_, ok := s.Retrieve(ctx, loc).(Stream)
	assert.True(t, ok)
}

func TestRetrieve_NotFound(t *testing.T) {
	s, _ := newMemStorage(WithRemote(newFakeRemote()))
	ctx := context.Background()

	assert.IsType(t, NotFound{}, s.Retrieve(ctx, LocalLocator{Path: "uploads/missing.txt"}))
	assert.IsType(t, NotFound{}, s.Retrieve(ctx, RemoteLocator{Bucket: "mocks", Key: "missing"}))
	assert.IsType(t, NotFound{}, s.Retrieve(ctx, nil))
}

func TestRetrieve_ReadFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.getErr = errors.New("access denied")
	s, _ := newMemStorage(WithRemote(remote))

	out := s.Retrieve(context.Background(), RemoteLocator{Bucket: "mocks", Key: "k"})
	failure, ok := out.(ReadFailure)
	require.True(t, ok, "expected ReadFailure, got %T", out)
	assert.ErrorContains(t, failure.Err, "access denied")
}

func TestRetrieve_RemoteWithoutBackend(t *testing.T) {
	s, _ := newMemStorage()
	out := s.Retrieve(context.Background(), RemoteLocator{Bucket: "mocks", Key: "k"})
	assert.IsType(t, ReadFailure{}, out)
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\cat.png`: "cat.png",
		"":                    "upload.bin",
		"..":                  "upload.bin",
		"dir/":                "upload.bin",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), "SanitizeName(%q)", in)
	}
}

func TestUniqueName(t *testing.T) {
	a := UniqueName("file.txt")
	b := UniqueName("file.txt")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_file.txt"))
	assert.Len(t, strings.TrimSuffix(a, "_file.txt"), 36)
}
