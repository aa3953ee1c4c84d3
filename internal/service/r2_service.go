package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/postpilot/configs"
)

// R2Service mirrors uploaded media to a Cloudflare R2 bucket so the UI can
// serve it from a public URL.
type R2Service struct {
	config cfg.Config
	client *s3.Client
}

func NewR2Service(config cfg.Config) *R2Service {
	return &R2Service{config: config}
}

func (r *R2Service) Enabled() bool {
	return r.config.R2.BucketName != ""
}

func (r *R2Service) s3Client(ctx context.Context) (*s3.Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	})
	return r.client, nil
}

func (r *R2Service) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := r.s3Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}
	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *R2Service) PublicURL(key string) string {
	if r.config.R2.PublicURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key)
}
