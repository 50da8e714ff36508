package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/brimdata/airindex/aie"
)

const (
	metaBlocks = "Blocks"
	metaSealed = "Sealed"
)

// S3Engine keeps segment objects in an S3 bucket.  S3 has no append, so
// Append rewrites the whole object and block accounting lives in the
// object's user metadata.  Only one writer per object is supported.
type S3Engine struct {
	client s3iface.S3API
}

var _ Engine = (*S3Engine)(nil)

func NewS3() *S3Engine {
	return &S3Engine{}
}

// NewS3WithClient returns an engine that uses client and ignores the
// connection properties passed to Open.
func NewS3WithClient(client s3iface.S3API) *S3Engine {
	return &S3Engine{client: client}
}

// Open creates the S3 client.  Recognized properties are "endpoint",
// "region", and "path_style".
func (s *S3Engine) Open(_ context.Context, props map[string]string) error {
	if s.client != nil {
		return nil
	}
	cfg := aws.NewConfig()
	if endpoint := props["endpoint"]; endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	if region := props["region"]; region != "" {
		cfg = cfg.WithRegion(region)
	}
	if v := props["path_style"]; v != "" {
		pathStyle, err := strconv.ParseBool(v)
		if err != nil {
			return aie.E(aie.Config, "s3 path_style: %w", err)
		}
		cfg = cfg.WithS3ForcePathStyle(pathStyle)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return aie.Storagef(err, "s3 session")
	}
	s.client = s3.New(sess)
	return nil
}

func (s *S3Engine) Close() error { return nil }

func (s *S3Engine) Create(ctx context.Context, u *URI) error {
	if _, err := s.head(ctx, u); err == nil {
		return ErrExists
	} else if !aie.IsKind(err, aie.NotFound) {
		return err
	}
	return s.put(ctx, u, nil, Props{})
}

func (s *S3Engine) Remove(ctx context.Context, u *URI) error {
	if _, err := s.head(ctx, u); err != nil {
		return err
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
	})
	return wrapErr(u, err)
}

func (s *S3Engine) GetSize(ctx context.Context, u *URI) (int64, error) {
	props, err := s.head(ctx, u)
	return props.SegmentLength, err
}

func (s *S3Engine) GetProps(ctx context.Context, u *URI) (Props, error) {
	return s.head(ctx, u)
}

func (s *S3Engine) Seal(ctx context.Context, u *URI) error {
	props, err := s.head(ctx, u)
	if err != nil {
		return err
	}
	props.Sealed = true
	_, err = s.client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(u.Host),
		Key:               aws.String(u.Key()),
		CopySource:        aws.String(u.Host + "/" + u.Key()),
		Metadata:          metadata(props),
		MetadataDirective: aws.String(s3.MetadataDirectiveReplace),
	})
	return wrapErr(u, err)
}

func (s *S3Engine) Append(ctx context.Context, u *URI, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyBlock
	}
	props, err := s.head(ctx, u)
	if err != nil {
		return 0, err
	}
	if props.Sealed {
		return 0, ErrSealed
	}
	var data []byte
	if props.SegmentLength > 0 {
		if data, err = s.ReadAll(ctx, u); err != nil {
			return 0, err
		}
	}
	props.BlockCount++
	if err := s.put(ctx, u, append(data, b...), props); err != nil {
		return 0, err
	}
	return props.BlockCount - 1, nil
}

func (s *S3Engine) ReadAll(ctx context.Context, u *URI) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
	})
	if err != nil {
		return nil, wrapErr(u, err)
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	return b, aie.Storagef(err, "%s", u)
}

func (s *S3Engine) ReadRange(ctx context.Context, u *URI, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, ErrOutOfRange
	}
	if length == 0 {
		props, err := s.head(ctx, u)
		if err != nil {
			return nil, err
		}
		return []byte{}, checkRange(props.SegmentLength, offset, length)
	}
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	})
	if err != nil {
		var reqerr awserr.RequestFailure
		if errors.As(err, &reqerr) && reqerr.StatusCode() == http.StatusRequestedRangeNotSatisfiable {
			return nil, ErrOutOfRange
		}
		return nil, wrapErr(u, err)
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, aie.Storagef(err, "%s", u)
	}
	if int64(len(b)) != length {
		// S3 truncates ranges that run past the end of the object.
		return nil, ErrOutOfRange
	}
	return b, nil
}

func (s *S3Engine) WriteAll(ctx context.Context, u *URI, b []byte) error {
	props, err := s.head(ctx, u)
	if err != nil && !aie.IsKind(err, aie.NotFound) {
		return err
	}
	if props.Sealed {
		return ErrSealed
	}
	return s.put(ctx, u, b, Props{BlockCount: 1})
}

func (s *S3Engine) head(ctx context.Context, u *URI) (Props, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
	})
	if err != nil {
		return Props{}, wrapErr(u, err)
	}
	props := Props{SegmentLength: aws.Int64Value(out.ContentLength)}
	for k, v := range aws.StringValueMap(out.Metadata) {
		switch {
		case strings.EqualFold(k, metaBlocks):
			props.BlockCount, _ = strconv.Atoi(v)
		case strings.EqualFold(k, metaSealed):
			props.Sealed, _ = strconv.ParseBool(v)
		}
	}
	return props, nil
}

func (s *S3Engine) put(ctx context.Context, u *URI, b []byte, props Props) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(u.Host),
		Key:      aws.String(u.Key()),
		Body:     bytes.NewReader(b),
		Metadata: metadata(props),
	})
	return wrapErr(u, err)
}

func metadata(props Props) map[string]*string {
	return aws.StringMap(map[string]string{
		metaBlocks: strconv.Itoa(props.BlockCount),
		metaSealed: strconv.FormatBool(props.Sealed),
	})
}

func wrapErr(u *URI, err error) error {
	if err == nil {
		return nil
	}
	var reqerr awserr.RequestFailure
	if errors.As(err, &reqerr) && reqerr.StatusCode() == http.StatusNotFound {
		return aie.E(aie.NotFound, u.String())
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return aie.E(aie.NotFound, u.String())
	}
	return aie.Storagef(err, "%s", u)
}
