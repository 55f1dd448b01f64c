package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadJSON(t *testing.T) {
	putter := &fakePutter{}
	u := &Uploader{Client: putter, Bucket: "rides", Region: "eu-west-1"}

	url, err := u.UploadJSON(context.Background(), "exports/rides.json", []byte(`[]`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if url != "https://rides.s3.eu-west-1.amazonaws.com/exports/rides.json" {
		t.Fatalf("unexpected url %q", url)
	}
	if aws.ToString(putter.input.Bucket) != "rides" || aws.ToString(putter.input.Key) != "exports/rides.json" {
		t.Fatalf("unexpected input %+v", putter.input)
	}
	if aws.ToString(putter.input.ContentType) != "application/json" {
		t.Fatalf("unexpected content type %q", aws.ToString(putter.input.ContentType))
	}
	if string(putter.body) != "[]" {
		t.Fatalf("unexpected body %q", putter.body)
	}
}

func TestObjectURL_CloudFront(t *testing.T) {
	u := &Uploader{Bucket: "rides", Region: "eu-west-1", CloudFrontDomain: "cdn.example.com"}
	if got := u.ObjectURL("a/b.json"); got != "https://cdn.example.com/a/b.json" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestUploadJSON_Error(t *testing.T) {
	u := &Uploader{Client: &fakePutter{err: errors.New("AccessDenied")}, Bucket: "rides"}
	if _, err := u.UploadJSON(context.Background(), "k", nil); err == nil {
		t.Fatalf("expected error")
	}
}
