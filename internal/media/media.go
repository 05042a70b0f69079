// Package media stores recipe images in object storage and turns stored keys into public URLs.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrNotDataURI   = errors.New("image must be a base64 data URI")
	ErrNotAnImage   = errors.New("data is not an image")
	ErrEmptyPayload = errors.New("image is empty")
)

// Processor normalizes an uploaded image and reports the resulting content type.
type Processor interface {
	Process(data []byte) ([]byte, string, error)
}

// Store is the object storage holding image blobs.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 compatible bucket such as Cloudflare R2.
type S3Store struct {
	client    ObjectAPI
	bucket    string
	publicURL string
}

// NewS3Store uses publicURL as a printf pattern with the object key as its only argument.
func NewS3Store(client ObjectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return CleanURL(fmt.Sprintf(s.publicURL, key))
}

// CleanURL escapes spaces and normalizes the URL, returning the input when it does not parse.
func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}

// Images turns uploaded data URIs into stored objects.
type Images struct {
	store Store
	proc  Processor
}

func NewImages(store Store, proc Processor) *Images {
	return &Images{store: store, proc: proc}
}

// Save decodes, processes and uploads the image and returns its object key.
func (im *Images) Save(ctx context.Context, ownerID uint, dataURI string) (string, error) {
	data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	out, contentType, err := im.proc.Process(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	key := fmt.Sprintf("images/%d/recipes/%s%s", ownerID, uuid.NewString(), extension(contentType))
	if err := im.store.Put(ctx, key, out, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (im *Images) Delete(ctx context.Context, key string) error {
	return im.store.Delete(ctx, key)
}

func (im *Images) URL(key string) string {
	return im.store.URL(key)
}

// DecodeDataURI decodes "data:image/<type>;base64,<payload>".
func DecodeDataURI(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURI
	}
	mediaType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrNotAnImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, ErrNotAnImage
	}
	return data, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
