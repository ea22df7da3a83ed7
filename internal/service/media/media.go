package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/apperrors"
)

const defaultUploadTTL = 15 * time.Minute

// Kind of uploaded object, defines key prefix
type Kind string

const (
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindThumbnail Kind = "thumbnail"
)

var prefixes = map[Kind]string{
	KindImage:     "images",
	KindVideo:     "videos",
	KindThumbnail: "thumbnails",
}

type Config struct {
	// S3 compatible storage, like MinIO
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string

	// Presigned upload url lifetime
	// If not set than default is used
	UploadTTL time.Duration
}

// Presigned upload: client PUTs the file to URL and then passes Key to the API
type Upload struct {
	Key       string
	URL       string
	Method    string
	ExpiresAt time.Time
}

type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Service struct {
	presign   presigner
	endpoint  string
	bucket    string
	uploadTTL time.Duration
}

func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket must not be empty")
	}
	if cfg.UploadTTL == 0 {
		cfg.UploadTTL = defaultUploadTTL
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("can't load s3 config. Err: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Service{
		presign:   s3.NewPresignClient(client),
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		bucket:    cfg.Bucket,
		uploadTTL: cfg.UploadTTL,
	}, nil
}

// Presign PUT url for the new object of the kind
func (s *Service) UploadURL(ctx context.Context, kind Kind, contentType string) (Upload, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return Upload{}, fmt.Errorf("unknown media kind %q. Err: %w", kind, apperrors.ErrMediaKeyInvalid)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%s/%s", prefix, now.Format("2006/01/02"), uuid.NewString())

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return Upload{}, fmt.Errorf("can't presign upload. Err: %w", err)
	}

	return Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: now.Add(s.uploadTTL),
	}, nil
}

// Public url of the uploaded object
// Key has to be the one returned by UploadURL for the kind
func (s *Service) PublicURL(kind Kind, key string) (string, error) {
	if err := validateKey(kind, key); err != nil {
		return "", err
	}

	return s.endpoint + "/" + url.PathEscape(s.bucket) + "/" + key, nil
}

// Key format: <prefix>/<yyyy>/<mm>/<dd>/<uuid>
func validateKey(kind Kind, key string) error {
	prefix, ok := prefixes[kind]
	if !ok {
		return apperrors.ErrMediaKeyInvalid
	}

	parts := strings.Split(key, "/")
	if len(parts) != 5 || parts[0] != prefix {
		return apperrors.ErrMediaKeyInvalid
	}

	if _, err := time.Parse("2006/01/02", strings.Join(parts[1:4], "/")); err != nil {
		return apperrors.ErrMediaKeyInvalid
	}

	if _, err := uuid.Parse(parts[4]); err != nil {
		return apperrors.ErrMediaKeyInvalid
	}

	return nil
}
