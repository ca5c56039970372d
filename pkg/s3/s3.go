package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

type ItfS3 interface {
	UploadSnapshot(ctx context.Context, key string, jpeg []byte) (string, error)
	PresignUrl(fileUrl string) (string, error)
}

type s3Client struct {
	client     *s3.S3
	uploader   s3manageriface.UploaderAPI
	bucketName string
}

func New(bucketName string) (ItfS3, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucketName,
	}, nil
}

func (s *s3Client) UploadSnapshot(ctx context.Context, key string, jpeg []byte) (string, error) {
	uploadOutput, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jpeg),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	return uploadOutput.Location, nil
}

func (s *s3Client) PresignUrl(fileUrl string) (string, error) {
	key, err := url.QueryUnescape(extractKeyFromS3Url(fileUrl))
	if err != nil {
		return "", fmt.Errorf("failed to decode S3 key: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return req.Presign(15 * time.Minute)
}

func extractKeyFromS3Url(fileUrl string) string {
	parts := strings.SplitN(fileUrl, ".com/", 2)
	if len(parts) > 1 {
		return parts[1]
	}
	return fileUrl
}

func newSession() (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		cfg.Credentials = credentials.NewStaticCredentials(id, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	}

	return session.NewSession(cfg)
}
