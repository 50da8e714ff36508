package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 implements the subset of the S3 API used by S3Engine over an
// in-memory map.
type fakeS3 struct {
	s3iface.S3API
	mu      sync.Mutex
	objects map[string]*fakeObject
}

type fakeObject struct {
	data []byte
	meta map[string]*string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]*fakeObject)}
}

func notFound() error {
	return awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), http.StatusNotFound, "req")
}

func (f *fakeS3) get(bucket, key *string) (*fakeObject, error) {
	o, ok := f.objects[aws.StringValue(bucket)+"/"+aws.StringValue(key)]
	if !ok {
		return nil, notFound()
	}
	return o, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, err := f.get(in.Bucket, in.Key)
	if err != nil {
		return nil, err
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(o.data))), Metadata: o.meta}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, err := f.get(in.Bucket, in.Key)
	if err != nil {
		return nil, err
	}
	data := o.data
	if in.Range != nil {
		var start, end int
		if _, err := fmt.Sscanf(*in.Range, "bytes=%d-%d", &start, &end); err != nil {
			return nil, err
		}
		if start >= len(data) {
			return nil, awserr.NewRequestFailure(awserr.New("InvalidRange", "bad range", nil), http.StatusRequestedRangeNotSatisfiable, "req")
		}
		if end >= len(data) {
			end = len(data) - 1
		}
		data = data[start : end+1]
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(append([]byte(nil), data...)))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = &fakeObject{data: b, meta: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CopyObjectWithContext(_ aws.Context, in *s3.CopyObjectInput, _ ...request.Option) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ok := f.objects[aws.StringValue(in.CopySource)]
	if !ok {
		return nil, notFound()
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = &fakeObject{data: src.data, meta: in.Metadata}
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}
