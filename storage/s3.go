// Package storage holds the S3-compatible client used by cmd/backup to
// export periodic database dumps.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"primetime/config"
)

// NewS3Client builds an S3 client against a custom endpoint, for S3-
// compatible providers that aren't AWS itself.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.BackupS3Endpoint,
				SigningRegion:     cfg.BackupS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.BackupS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.BackupS3AccessKey, cfg.BackupS3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadFile uploads data to bucket/key and returns its location.
func UploadFile(ctx context.Context, client *s3.Client, bucket, key string, data []byte, cfg *config.Config) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", cfg.BackupS3Endpoint, bucket, key), nil
}
